package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Generate docs/variables-whitelist.json from the token files",
	Long: `Collect every --pli-* custom property declared in the token files.
Declarations carrying the deprecation marker in an adjacent comment are
listed as deprecated instead. The hand-maintained internalAllowed list
of the previous whitelist is kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		wl, err := plicss.GenerateWhitelist(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			newReporter(cmd).PrintStats("Whitelist", []reporter.Stat{
				{Label: "Variables", Value: wl.Count},
				{Label: "Deprecated", Value: len(wl.Deprecated)},
				{Label: "Internal allowed", Value: len(wl.InternalAllowed)},
			})
		}
		return nil
	},
}

var whitelistDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the whitelist with its snapshot",
	Long: `Report tokens added to or removed from the whitelist since the last
snapshot. Removing a token that was not deprecated first fails with exit
code 2 unless --update accepts the current whitelist as the new snapshot.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		update, _ := cmd.Flags().GetBool("update")
		diff, err := plicss.DiffWhitelist(buildConfig(), update)
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			r.PrintList("Added", diff.Added, 20)
			r.PrintList("Removed", diff.Removed, 20)
			if !diff.Updated {
				r.PrintIssues(diff.Issues())
				r.PrintSummary(diff.Issues())
			}
		}
		return exitWith(diff.ExitCode())
	},
}

func init() {
	whitelistDiffCmd.Flags().Bool("update", false, "Replace the snapshot with the current whitelist")
	whitelistCmd.AddCommand(whitelistDiffCmd)
}
