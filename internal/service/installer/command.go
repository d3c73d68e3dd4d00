package installer

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/oshokin/agf-installer/internal/config"
	"github.com/oshokin/agf-installer/internal/domain/release"
	"github.com/oshokin/agf-installer/internal/logger"
	"github.com/oshokin/agf-installer/internal/repository/manifest"
	"github.com/oshokin/agf-installer/internal/repository/receipt"
	"github.com/oshokin/agf-installer/internal/service/fetcher"
)

// Options are inputs accepted by the installer entry points.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ConfigExplicit is true when the user passed ConfigPath; a missing file is then an error.
	ConfigExplicit bool
	// InstallDir overrides the configured install directory.
	InstallDir string
	// Platform overrides the detected platform (key or target triple).
	Platform string
	// LogLevel overrides the configured log level.
	LogLevel string
	// StopRunning kills running instances before applying.
	StopRunning bool
	// SkipSmokeTest disables "<binary> --help" after applying.
	SkipSmokeTest bool
}

// Setup loads settings, applies overrides and builds an Installer with its dependencies.
func Setup(ctx context.Context, opts *Options) (*Installer, *config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath, opts.ConfigExplicit)
	if err != nil {
		return nil, nil, err
	}

	if opts.InstallDir != "" {
		cfg.InstallDir = opts.InstallDir
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	cfg.SkipSmokeTest = cfg.SkipSmokeTest || opts.SkipSmokeTest

	if err = config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	} else {
		logger.Warnf(ctx, "Unknown log level %q, keeping %s", cfg.LogLevel, logger.Level())
	}

	fs := afero.NewOsFs()

	store, err := manifest.Open(fs, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open manifest: %w", err)
	}

	inst := New(store, fetcher.FromConfig(cfg),
		WithInstallDir(cfg.InstallDir),
		WithBinaryName(cfg.BinaryName),
		WithMaxBinarySize(cfg.MaxArtifactSize),
		WithReceipts(receipt.NewFileRepository(fs, cfg.InstallDir)),
		WithSmokeTest(!cfg.SkipSmokeTest),
		WithStopRunning(opts.StopRunning),
	)

	return inst, cfg, nil
}

// ResolvePlatform parses an explicit platform or detects the running one.
func ResolvePlatform(platform string) (release.PlatformKey, error) {
	if strings.TrimSpace(platform) == "" {
		return release.CurrentPlatform()
	}

	return release.ParsePlatformKey(platform)
}

// Run executes a full install of version and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options, version string) (*Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "agf-installer")

	inst, _, err := Setup(ctx, opts)
	if err != nil {
		return nil, err
	}

	platform, err := ResolvePlatform(opts.Platform)
	if err != nil {
		return nil, err
	}

	result, err := inst.Install(ctx, version, platform)
	if err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return nil, err
	}

	return result, nil
}
