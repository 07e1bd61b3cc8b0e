package main

import (
	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

// exitWith turns a tool's exit code into a command error.
func exitWith(code int) error {
	if code == plicss.ExitOK {
		return nil
	}
	return &plicss.ExitError{Code: code}
}

func quiet() bool {
	return getBoolWithFallback("quiet", "quiet", false)
}

// newReporter writes to the command's stdout with the shared color rules.
func newReporter(cmd *cobra.Command) *reporter.Reporter {
	opts := reporter.DefaultOptions()
	opts.UseColors = getBoolWithFallback("color", "color", false)
	return reporter.New(cmd.OutOrStdout(), opts)
}
