package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Fold duplicate tokens into one canonical name",
}

var mergePlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry run: pick canonical names and count alias occurrences",
	RunE: func(cmd *cobra.Command, _ []string) error {
		plan, err := plicss.PlanMerge(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			items := make([]string, 0, len(plan.Plan))
			for _, g := range plan.Plan {
				items = append(items, fmt.Sprintf("%s <- %s (%d occurrences)",
					g.Canonical, strings.Join(g.Aliases, ", "), plan.TotalOccurrences(g)))
			}
			r := newReporter(cmd)
			r.PrintList("Planned merges", items, 0)
			r.Hint("review %s, then run `plicss merge apply`", plicss.MergeTableFile)
		}
		return nil
	},
}

var mergeApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Rewrite aliases to their canonical token (backs up first)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applied, err := plicss.ApplyMerge(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			r.Success("✓ %d files changed, backup in %s", len(applied.Changes), applied.BackupDir)
			for _, c := range applied.Changes {
				r.Hint("  %s (%d -> %d bytes)", c.File, c.BeforeBytes, c.AfterBytes)
			}
		}
		return nil
	},
}

func init() {
	mergeCmd.AddCommand(mergePlanCmd)
	mergeCmd.AddCommand(mergeApplyCmd)
}
