package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by agf-installer and agf-packager.
type Config struct {
	// ManifestPath is a YAML release manifest on disk. Empty means the bundled manifest.
	ManifestPath string `yaml:"manifest_path,omitempty"`
	// ManifestSignaturePath is the armored detached signature of ManifestPath.
	// Defaults to ManifestPath + ".asc" when KeyringPath is set.
	ManifestSignaturePath string `yaml:"manifest_signature_path,omitempty"`
	// KeyringPath is an armored OpenPGP public keyring. When set, the manifest must be signed.
	KeyringPath string `yaml:"keyring_path,omitempty"`
	// InstallDir is where the binary is placed. "~" is expanded.
	InstallDir string `yaml:"install_dir"`
	// BinaryName is the executable name inside the archive and in InstallDir.
	BinaryName string `yaml:"binary_name"`
	// Timeout bounds a single artifact download attempt.
	Timeout time.Duration `yaml:"timeout"`
	// Retries is the number of extra download attempts after a transient failure.
	Retries int `yaml:"retries"`
	// MaxArtifactSize caps the archive and extracted binary size in bytes.
	MaxArtifactSize int64 `yaml:"max_artifact_size"`
	// SkipSmokeTest disables running "<binary> --help" after installation.
	SkipSmokeTest bool `yaml:"skip_smoke_test"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for installer settings.
	DefaultConfigFilename = "agf-installer.yaml"

	// DefaultInstallDir is where agf is installed when nothing else is configured.
	DefaultInstallDir = "~/.local/bin"

	// DefaultBinaryName is the executable shipped in every release archive.
	DefaultBinaryName = "agf"

	// DefaultTimeout bounds a single download attempt.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxArtifactSize caps downloads at 256 MiB.
	DefaultMaxArtifactSize int64 = 256 << 20

	// MaxRetries caps the configurable number of extra download attempts.
	MaxRetries = 5

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidBinaryName is returned when the binary name contains a path separator.
	errInvalidBinaryName = errors.New("binary name must be a plain file name")
	// errInvalidRetries is returned when retries are out of range.
	errInvalidRetries = errors.New("retries out of range")
	// errSignatureWithoutKeyring is returned when a signature path is set without a keyring.
	errSignatureWithoutKeyring = errors.New("manifest signature requires a keyring")
)

// Default returns settings that install the bundled manifest into DefaultInstallDir.
func Default() *Config {
	cfg := new(Config)

	// Defaults never fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when path does not exist
// and was not explicitly requested by the user.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}

	if !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return nil, err
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.InstallDir == "" {
		settings.InstallDir = DefaultInstallDir
	}

	installDir, err := homedir.Expand(settings.InstallDir)
	if err != nil {
		return fmt.Errorf("expand install dir: %w", err)
	}

	settings.InstallDir = filepath.Clean(installDir)

	if settings.BinaryName == "" {
		settings.BinaryName = DefaultBinaryName
	}

	if strings.ContainsAny(settings.BinaryName, `/\`) || settings.BinaryName == "." || settings.BinaryName == ".." {
		return fmt.Errorf("%w: %q", errInvalidBinaryName, settings.BinaryName)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.Retries < 0 || settings.Retries > MaxRetries {
		return fmt.Errorf("%w: %d not in [0, %d]", errInvalidRetries, settings.Retries, MaxRetries)
	}

	if settings.MaxArtifactSize <= 0 {
		settings.MaxArtifactSize = DefaultMaxArtifactSize
	}

	if settings.ManifestSignaturePath != "" && settings.KeyringPath == "" {
		return errSignatureWithoutKeyring
	}

	if settings.KeyringPath != "" && settings.ManifestSignaturePath == "" && settings.ManifestPath != "" {
		settings.ManifestSignaturePath = settings.ManifestPath + ".asc"
	}

	return nil
}
