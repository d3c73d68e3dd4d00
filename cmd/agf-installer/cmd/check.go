package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oshokin/agf-installer/internal/service/installer"
)

// checkCmd verifies a local archive against the manifest.
var checkCmd = &cobra.Command{
	Use:   "check <archive> <version>",
	Short: "Verify a downloaded archive against the manifest checksum",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inst, _, err := installer.Setup(ctx, options)
		if err != nil {
			return err
		}

		platform, err := installer.ResolvePlatform(options.Platform)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(filepath.Clean(args[0]))
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		ref, err := inst.CheckArchive(ctx, data, args[1], platform)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (sha256 %s)\n", args[0], ref.Checksum)

		return nil
	},
}
