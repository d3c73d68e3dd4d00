package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/agf-installer/internal/repository/receipt"
	"github.com/oshokin/agf-installer/internal/service/installer"
)

// statusCmd prints the install receipt.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which release is installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		inst, _, err := installer.Setup(ctx, options)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		installed, err := inst.Receipt(ctx)
		if errors.Is(err, receipt.ErrNotFound) {
			_, _ = fmt.Fprintf(out, "agf is not installed in %s\n", inst.TargetPath())
			return nil
		}

		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(out, "version:      %s\n", installed.Version)
		_, _ = fmt.Fprintf(out, "platform:     %s\n", installed.Platform)
		_, _ = fmt.Fprintf(out, "path:         %s\n", installed.Path)
		_, _ = fmt.Fprintf(out, "archive:      %s\n", installed.URL)
		_, _ = fmt.Fprintf(out, "sha256:       %s\n", installed.ArchiveChecksum)
		_, _ = fmt.Fprintf(out, "installed at: %s\n", installed.InstalledAt.Local().Format(time.RFC3339))

		return nil
	},
}
