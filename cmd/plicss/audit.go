package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Flag --pli-* declarations that are not whitelisted",
	Long: `Check every custom property declared under the CSS dir against the
whitelist. Declarations pass when whitelisted, internally allowed, marked
deprecated or placed in a theme directory. Exits 2 on violations.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := plicss.Audit(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			r.PrintIssues(res.Issues)
			if showDeprecated, _ := cmd.Flags().GetBool("show-deprecated"); showDeprecated {
				r.PrintIssues(res.Deprecated)
			}
			r.PrintSummary(res.Issues)
			r.PrintStats("Audit", []reporter.Stat{
				{Label: "Files scanned", Value: res.FilesScanned},
				{Label: "Violations", Value: res.Report.Counts.Violations},
				{Label: "Deprecated declarations", Value: res.Report.Counts.Deprecated},
			})
			if res.Report.Counts.Violations > 0 {
				r.Hint("run `plicss audit classify` to bucket the violations")
			}
		}
		return exitWith(res.ExitCode())
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Bucket the last audit's violations by naming pattern",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := plicss.ClassifyViolations(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			stats := make([]reporter.Stat, 0, len(out.Categories))
			for _, c := range out.Categories {
				stats = append(stats, reporter.Stat{Label: c.Category, Value: c.Count})
			}
			r.PrintStats("Violations by category", stats)
			r.PrintList("Add to whitelist", out.Recommendation.AddToWhitelist, 0)
			r.PrintList("Keep internal", out.Recommendation.KeepInternal, 0)
			r.PrintList("Deprecated", out.Recommendation.Deprecated, 0)
			r.PrintList("Review", out.Recommendation.Review, 0)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().Bool("show-deprecated", false, "Also print deprecated declarations")
	auditCmd.AddCommand(classifyCmd)
}
