package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
)

var hashesCmd = &cobra.Command{
	Use:   "hashes",
	Short: "Point HTML references at the hashed bundles in the manifest",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := plicss.RewriteHashes(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			r.PrintList("Updated", res.Changed, 0)
			r.Success("✓ %d HTML files updated", len(res.Changed))
		}
		return nil
	},
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Fail when HTML links a hashed bundle directly",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := plicss.ValidateLinks(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			r.PrintIssues(res.Issues)
			r.PrintSummary(res.Issues)
		}
		return exitWith(res.ExitCode())
	},
}
