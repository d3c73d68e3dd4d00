package release

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ArtifactRef identifies one downloadable archive for one platform.
type ArtifactRef struct {
	// URL is where the archive is downloaded from.
	URL string
	// Checksum is the SHA-256 of the archive. Nil marks a placeholder awaiting publication.
	Checksum *Checksum
}

// HasChecksum reports whether the artifact is published.
func (a ArtifactRef) HasChecksum() bool {
	return a.Checksum != nil
}

// clone returns a copy that shares no memory with a.
func (a ArtifactRef) clone() ArtifactRef {
	cloned := ArtifactRef{URL: a.URL}

	if a.Checksum != nil {
		sum := *a.Checksum
		cloned.Checksum = &sum
	}

	return cloned
}

// Record describes one published version of agf. It is immutable:
// accessors return copies and a new version produces a new Record.
type Record struct {
	// version is the normalized version string without a leading "v".
	version string
	// semver is the parsed version used for ordering.
	semver *goversion.Version
	// artifacts maps every declared platform to its archive.
	artifacts map[PlatformKey]ArtifactRef
}

// NewRecord validates the input and builds an immutable record.
func NewRecord(version string, artifacts map[PlatformKey]ArtifactRef) (*Record, error) {
	normalized := NormalizeVersion(version)
	if normalized == "" {
		return nil, fmt.Errorf("%w: version is empty", ErrInvalidRecord)
	}

	semver, err := goversion.NewVersion(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %w", ErrInvalidRecord, version, err)
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: version %s declares no platforms", ErrInvalidRecord, normalized)
	}

	copied := make(map[PlatformKey]ArtifactRef, len(artifacts))

	for platform, ref := range artifacts {
		if !platform.Valid() {
			return nil, fmt.Errorf("%w: version %s: %w: %q", ErrInvalidRecord, normalized, ErrUnsupportedPlatform, platform)
		}

		if strings.TrimSpace(ref.URL) == "" {
			return nil, fmt.Errorf("%w: version %s, platform %s: url is empty", ErrInvalidRecord, normalized, platform)
		}

		copied[platform] = ref.clone()
	}

	return &Record{
		version:   normalized,
		semver:    semver,
		artifacts: copied,
	}, nil
}

// NormalizeVersion trims whitespace and a leading "v".
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// Version returns the version string without a leading "v".
func (r *Record) Version() string {
	return r.version
}

// Compare orders records by semantic version.
func (r *Record) Compare(other *Record) int {
	return r.semver.Compare(other.semver)
}

// Platforms returns the declared platforms in the canonical order.
func (r *Record) Platforms() []PlatformKey {
	result := make([]PlatformKey, 0, len(r.artifacts))

	for _, platform := range Platforms() {
		if _, ok := r.artifacts[platform]; ok {
			result = append(result, platform)
		}
	}

	return result
}

// Artifacts returns a copy of the platform map.
func (r *Record) Artifacts() map[PlatformKey]ArtifactRef {
	result := make(map[PlatformKey]ArtifactRef, len(r.artifacts))
	for platform, ref := range r.artifacts {
		result[platform] = ref.clone()
	}

	return result
}

// Published reports whether every declared platform carries a checksum.
func (r *Record) Published() bool {
	for _, ref := range r.artifacts {
		if !ref.HasChecksum() {
			return false
		}
	}

	return true
}

// Select picks the artifact for platform from record.
func Select(record *Record, platform PlatformKey) (ArtifactRef, error) {
	ref, ok := record.artifacts[platform]
	if !ok {
		return ArtifactRef{}, fmt.Errorf("version %s, platform %s: %w", record.version, platform, ErrUnsupportedPlatform)
	}

	return ref.clone(), nil
}
