package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/agf-installer/internal/repository/manifest"
	"github.com/oshokin/agf-installer/internal/service/installer"
)

// installCmd downloads, verifies and installs a release.
var installCmd = &cobra.Command{
	Use:   "install [version]",
	Short: "Download, verify and install a release (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requested := manifest.LatestVersion
		if len(args) == 1 {
			requested = args[0]
		}

		result, err := installer.Run(cmd.Context(), options, requested)
		if err != nil {
			return err
		}

		status := "installed"
		if !result.Changed {
			status = "already installed"
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "agf %s (%s) %s at %s\n",
			result.Record.Version(), result.Platform, status, result.Path)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	installCmd.Flags().BoolVar(&options.StopRunning, "stop-running", false, "terminate running agf processes before replacing the binary")
	installCmd.Flags().BoolVar(&options.SkipSmokeTest, "skip-smoke-test", false, "do not run \"agf --help\" after installing")
}
