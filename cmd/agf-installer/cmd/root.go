package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/agf-installer/internal/config"
	"github.com/oshokin/agf-installer/internal/service/installer"
	"github.com/oshokin/agf-installer/internal/version"
)

var (
	// options are shared by every subcommand.
	options = new(installer.Options)

	// rootCmd represents the base command for resolving and installing agf releases.
	rootCmd = &cobra.Command{
		Use:           "agf-installer",
		Short:         "Resolve, verify and install prebuilt agf releases",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			options.ConfigExplicit = cmd.Flags().Changed("config")
		},
	}
)

// Execute runs the agf-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVarP(&options.Platform, "platform", "p", "", "platform key or target triple (default: detected)")
	flags.StringVarP(&options.InstallDir, "install-dir", "d", "", "directory to install agf into")

	rootCmd.AddCommand(installCmd, listCmd, resolveCmd, checkCmd, statusCmd)
}
