package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

var unusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "List tokens defined in the token files that nothing reads",
	Long: `Count var() references to every token defined in the token files
across the CSS dir. Exits 3 when any token is unused; nothing is deleted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := plicss.FindUnused(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			r.PrintIssues(res.Issues)
			r.PrintStats("Token usage", []reporter.Stat{
				{Label: "Tokens", Value: res.Report.TotalTokens},
				{Label: "Unused", Value: res.Report.UnusedCount},
			})
		}
		return exitWith(res.ExitCode())
	},
}
