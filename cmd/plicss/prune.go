package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete bundles no HTML file references",
	Long: `Collect every /static/css/... reference from the HTML dirs and delete
unreferenced hashed bundles, plus unreferenced plain files that have a
hashed copy beside them. Referenced files are never deleted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		report, err := plicss.Prune(buildConfig(), dryRun)
		if err != nil {
			return err
		}
		if !quiet() {
			title := "Removed"
			if dryRun {
				title = "Would remove"
			}
			r := newReporter(cmd)
			r.PrintList(title, report.Removed, 0)
			r.Success("✓ %d referenced, %d kept, %d removed", len(report.Referenced), report.Kept, len(report.Removed))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().Bool("dry-run", false, "List files without deleting them")
}
