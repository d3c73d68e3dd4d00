package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/agf-installer/internal/config"
	"github.com/oshokin/agf-installer/internal/service/packager"
	"github.com/oshokin/agf-installer/internal/version"
)

var (
	// options collects flag values for the packager.
	options = new(packager.Options)

	// rootCmd represents the base command for publishing a release record.
	rootCmd = &cobra.Command{
		Use:          "agf-packager <version> <artifacts-dir>",
		Short:        "Hash release archives and append them to the manifest",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options.ConfigExplicit = cmd.Flags().Changed("config")
			options.Version = args[0]
			options.ArtifactsDir = args[1]

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the agf-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVarP(&options.ManifestPath, "manifest", "m", "", "manifest file to append to (default: manifest_path from config)")
	flags.StringVar(&options.BaseURL, "base-url", packager.DefaultBaseURL, "repository URL whose releases host the archives")
	flags.StringVar(&options.SigningKeyPath, "signing-key", "", "armored private key used to sign the manifest (passphrase in "+packager.PassphraseEnv+")")
}
