package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oshokin/agf-installer/internal/service/installer"
)

// listCmd prints every release in the manifest.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List releases and the platforms they support",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		inst, _, err := installer.Setup(ctx, options)
		if err != nil {
			return err
		}

		records, err := inst.Store().List(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "VERSION\tSTATUS\tPLATFORMS")

		for _, record := range records {
			status := "published"
			if !record.Published() {
				status = "placeholder"
			}

			platforms := make([]string, 0, len(record.Platforms()))
			for _, platform := range record.Platforms() {
				platforms = append(platforms, platform.String())
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", record.Version(), status, strings.Join(platforms, ","))
		}

		return w.Flush()
	},
}
