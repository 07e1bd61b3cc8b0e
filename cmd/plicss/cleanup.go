package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Replace deprecated token names left in the built bundles",
	Long: `Rewrite the deprecated aliases configured under cleanup.aliases to
their canonical names inside the bundles matching cleanup.targets.
Touched bundles are backed up first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		report, err := plicss.Cleanup(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			r := newReporter(cmd)
			for _, f := range report.Processed {
				if f.Error != "" {
					r.Hint("  %s: %s", f.File, f.Error)
					continue
				}
				for _, rep := range f.Replacements {
					r.Hint("  %s: %s -> %s (%d)", f.File, rep.Deprecated, rep.Canonical, rep.Count)
				}
			}
			r.Success("✓ %d replacements", report.TotalReplacements)
		}
		return nil
	},
}
