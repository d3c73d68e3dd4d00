package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/oshokin/agf-installer/internal/config"
	"github.com/oshokin/agf-installer/internal/domain/release"
	"github.com/oshokin/agf-installer/internal/logger"
	"github.com/oshokin/agf-installer/internal/repository/manifest"
	"github.com/oshokin/agf-installer/internal/signature"
)

const (
	// DefaultBaseURL is the repository whose GitHub releases host the archives.
	DefaultBaseURL = "https://github.com/subinium/agf"

	// PassphraseEnv holds the passphrase of an encrypted signing key.
	PassphraseEnv = "AGF_SIGNING_PASSPHRASE"

	// signatureSuffix is appended to the manifest path for the detached signature.
	signatureSuffix = ".asc"

	// signatureFileMode is used when writing the signature.
	signatureFileMode os.FileMode = 0o644
)

var (
	// errManifestPathRequired is returned when neither flag nor config names a manifest file.
	errManifestPathRequired = errors.New("manifest path must be provided")
	// errNoArtifacts is returned when the artifacts directory holds no known archive.
	errNoArtifacts = errors.New("no release archives found")
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ConfigExplicit is true when the user passed ConfigPath.
	ConfigExplicit bool
	// Version is the release being published.
	Version string
	// ArtifactsDir holds agf-<triple>.tar.gz archives.
	ArtifactsDir string
	// ManifestPath overrides the configured manifest file.
	ManifestPath string
	// BaseURL is the repository URL used to render download URLs.
	BaseURL string
	// SigningKeyPath is an armored private key; when set the manifest is signed.
	SigningKeyPath string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// packager prepares a release record and writes it to the manifest.
// It is unexported; callers should use Run, which encapsulates setup and validation.
type packager struct {
	// fs is the filesystem holding archives, manifest and keys.
	fs afero.Fs
	// opts are the validated inputs.
	opts *Options
	// passphrase unlocks an encrypted signing key.
	passphrase []byte
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "agf-packager")

	cfg, err := config.LoadOrDefault(opts.ConfigPath, opts.ConfigExplicit)
	if err != nil {
		return err
	}

	if opts.ManifestPath == "" {
		opts.ManifestPath = cfg.ManifestPath
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	} else {
		logger.Warnf(ctx, "Unknown log level %q, keeping %s", cfg.LogLevel, logger.Level())
	}

	pkg, err := newPackager(afero.NewOsFs(), opts, []byte(os.Getenv(PassphraseEnv)))
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	if _, err = pkg.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// newPackager validates inputs and fills defaults.
func newPackager(fs afero.Fs, opts *Options, passphrase []byte) (*packager, error) {
	if opts.ManifestPath == "" {
		return nil, errManifestPathRequired
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	return &packager{
		fs:         fs,
		opts:       opts,
		passphrase: passphrase,
	}, nil
}

// Run builds the record, appends it to the manifest and signs the result.
func (p *packager) Run(ctx context.Context) (*release.Record, error) {
	logger.InfoKV(ctx, "Hashing release archives", "dir", p.opts.ArtifactsDir)

	record, err := p.buildRecord(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Appending release to manifest", "path", p.opts.ManifestPath, "version", record.Version())

	data, err := manifest.NewFileRepository(p.fs, p.opts.ManifestPath).Append(ctx, record)
	if err != nil {
		return nil, err
	}

	if p.opts.SigningKeyPath != "" {
		if err = p.sign(ctx, data); err != nil {
			return nil, err
		}
	}

	p.printNextSteps(ctx, record)

	return record, nil
}

// buildRecord hashes every archive found for a known platform.
func (p *packager) buildRecord(ctx context.Context) (*release.Record, error) {
	artifacts := make(map[release.PlatformKey]release.ArtifactRef)

	for _, platform := range release.Platforms() {
		path := filepath.Join(p.opts.ArtifactsDir, platform.ArtifactName())

		data, err := afero.ReadFile(p.fs, path)
		if errors.Is(err, os.ErrNotExist) {
			logger.DebugKV(ctx, "No archive for platform", "platform", platform.String())
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		sum := release.Sum(data)
		artifacts[platform] = release.ArtifactRef{
			URL:      release.ArtifactURL(p.opts.BaseURL, p.opts.Version, platform),
			Checksum: &sum,
		}

		logger.InfoKV(ctx, "Hashed archive", "platform", platform.String(), "sha256", sum.String())
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%s: %w", p.opts.ArtifactsDir, errNoArtifacts)
	}

	return release.NewRecord(p.opts.Version, artifacts)
}

// sign writes an armored detached signature next to the manifest.
func (p *packager) sign(ctx context.Context, data []byte) error {
	keyring, err := signature.LoadKeyring(p.fs, p.opts.SigningKeyPath)
	if err != nil {
		return err
	}

	signer, err := signature.NewSigner(keyring, p.passphrase)
	if err != nil {
		return err
	}

	sig, err := signer.Sign(data)
	if err != nil {
		return err
	}

	signaturePath := p.opts.ManifestPath + signatureSuffix
	if err = afero.WriteFile(p.fs, signaturePath, sig, signatureFileMode); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	logger.InfoKV(ctx, "Signed manifest", "path", signaturePath)

	return nil
}

// printNextSteps logs human-readable guidance for publishing the release.
func (p *packager) printNextSteps(ctx context.Context, record *release.Record) {
	var builder strings.Builder

	builder.WriteString("Upload the following files to the v")
	builder.WriteString(record.Version())
	builder.WriteString(" release:")

	for _, platform := range record.Platforms() {
		builder.WriteString("\n")
		builder.WriteString(platform.ArtifactName())
	}

	builder.WriteString("\n\nThen publish ")
	builder.WriteString(p.opts.ManifestPath)

	if p.opts.SigningKeyPath != "" {
		builder.WriteString(" and ")
		builder.WriteString(p.opts.ManifestPath + signatureSuffix)
	}

	logger.Info(ctx, builder.String())
}
