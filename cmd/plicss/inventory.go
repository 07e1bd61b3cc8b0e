package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory every token and group them by normalised value",
	Long: `Record each token's definitions and usages across the source
stylesheets, group tokens sharing a value and write the merge candidates
that "plicss merge plan" reads.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := plicss.BuildInventory(buildConfig())
		if err != nil {
			return err
		}
		if quiet() {
			return nil
		}
		m := res.Metrics
		r := newReporter(cmd)
		r.PrintStats("Token inventory", []reporter.Stat{
			{Label: "Tokens", Value: m.TotalTokens},
			{Label: "Without definition", Value: m.TokensWithoutDefinition},
			{Label: "Without usage", Value: m.TokensWithoutUsage},
			{Label: "Conflicting values", Value: fmt.Sprintf("%d (%.2f%%)", m.TokensWithConflictingValues, m.PercentageTokensConflicting)},
			{Label: "Duplicate value groups", Value: fmt.Sprintf("%d of %d (%.2f%%)", m.DuplicateValueGroups, m.TotalValueGroups, m.PercentageDuplicateValueGroup)},
			{Label: "Merge candidates", Value: m.MergeCandidateGroups},
		})
		items := make([]string, 0, len(res.Candidates))
		for _, c := range res.Candidates {
			items = append(items, fmt.Sprintf("%s: %s", c.Value, strings.Join(c.Tokens, ", ")))
		}
		r.PrintList("Merge candidates", items, 15)
		return nil
	},
}
