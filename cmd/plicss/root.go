package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss/internal/logger"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

var rootCmd = &cobra.Command{
	Use:   "plicss",
	Short: "Stylesheet pipeline and design-token governance for PLI Cadastros",
	Long: `Bundles, minifies and fingerprints the PLI Cadastros stylesheets and
keeps the --pli-* design tokens in check: whitelist, audit, unused
detection, duplicate merging and cleanup.

Reports are written as JSON under the docs directory. Exit codes:
0 ok, 1 fatal error, 2 violations, 3 advisory findings.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		logger.Setup(logger.Options{
			Verbose: getBoolWithFallback("verbose", "verbose", false),
			Quiet:   getBoolWithFallback("quiet", "quiet", false),
			Color:   reporter.ShouldUseColors(getBoolWithFallback("color", "color", false)),
			Output:  cmd.ErrOrStderr(),
		})
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", defaultConfigFile, "Config file path")
	pf.String("root", "", "Project root (default \".\")")
	pf.String("css-dir", "", "Stylesheet directory relative to root (default \"static/css\")")
	pf.String("docs-dir", "", "Report directory relative to root (default \"docs\")")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Only log errors and skip the summary")
	pf.Bool("color", false, "Force color output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(whitelistCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(unusedCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(hashesCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
