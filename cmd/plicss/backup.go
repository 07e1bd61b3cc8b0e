package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the CSS tree and token documents to a timestamped directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := plicss.Backup(buildConfig())
		if err != nil {
			return err
		}
		if !quiet() {
			newReporter(cmd).Success("✓ %d files copied to %s", res.Files, res.Dir)
		}
		return nil
	},
}
