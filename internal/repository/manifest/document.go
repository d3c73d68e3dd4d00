package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/agf-installer/internal/domain/release"
)

// Document is the on-disk YAML layout of a release manifest.
type Document struct {
	// Name is the packaged program, e.g. agf.
	Name string `yaml:"name"`
	// Homepage is informational.
	Homepage string `yaml:"homepage,omitempty"`
	// Releases are kept in the order they were authored.
	Releases []Entry `yaml:"releases"`
}

// Entry is one release in a Document.
type Entry struct {
	// Version is the release version without a leading "v".
	Version string `yaml:"version"`
	// Platforms maps a platform key to its artifact.
	Platforms map[string]Artifact `yaml:"platforms"`
}

// Artifact is one downloadable archive in an Entry.
type Artifact struct {
	// URL is the archive download location.
	URL string `yaml:"url"`
	// SHA256 is the hex digest of the archive. Empty marks a placeholder.
	SHA256 string `yaml:"sha256,omitempty"`
}

// ParseDocument decodes manifest bytes.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &doc, nil
}

// Marshal encodes the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	return data, nil
}

// Records converts every entry into a validated release.Record.
func (d *Document) Records() ([]*release.Record, error) {
	records := make([]*release.Record, 0, len(d.Releases))

	for _, entry := range d.Releases {
		record, err := entry.Record()
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// Record converts the entry into a validated release.Record.
func (e *Entry) Record() (*release.Record, error) {
	artifacts := make(map[release.PlatformKey]release.ArtifactRef, len(e.Platforms))

	for name, artifact := range e.Platforms {
		platform := release.PlatformKey(name)
		if !platform.Valid() {
			return nil, fmt.Errorf("version %s: %w: %q", e.Version, release.ErrUnsupportedPlatform, name)
		}

		ref := release.ArtifactRef{URL: artifact.URL}

		if artifact.SHA256 != "" {
			sum, err := release.ParseChecksum(artifact.SHA256)
			if err != nil {
				return nil, fmt.Errorf("version %s, platform %s: %w", e.Version, name, err)
			}

			ref.Checksum = &sum
		}

		artifacts[platform] = ref
	}

	return release.NewRecord(e.Version, artifacts)
}

// EntryFromRecord converts a record back into its YAML form.
func EntryFromRecord(record *release.Record) Entry {
	artifacts := record.Artifacts()
	entry := Entry{
		Version:   record.Version(),
		Platforms: make(map[string]Artifact, len(artifacts)),
	}

	for platform, ref := range artifacts {
		artifact := Artifact{URL: ref.URL}
		if ref.Checksum != nil {
			artifact.SHA256 = ref.Checksum.String()
		}

		entry.Platforms[platform.String()] = artifact
	}

	return entry
}
