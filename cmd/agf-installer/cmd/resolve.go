package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/agf-installer/internal/service/installer"
)

// resolveCmd prints the artifact a version resolves to without downloading it.
var resolveCmd = &cobra.Command{
	Use:   "resolve <version>",
	Short: "Print the download URL and checksum for a release",
	Args:  cobra.ExactArgs(1),
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

		record, ref, err := inst.Resolve(ctx, args[0], platform)
		if err != nil {
			return err
		}

		checksum := "(placeholder, not published)"
		if ref.HasChecksum() {
			checksum = ref.Checksum.String()
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "version:  %s\n", record.Version())
		_, _ = fmt.Fprintf(out, "platform: %s\n", platform)
		_, _ = fmt.Fprintf(out, "url:      %s\n", ref.URL)
		_, _ = fmt.Fprintf(out, "sha256:   %s\n", checksum)

		return nil
	},
}
