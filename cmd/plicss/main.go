// Command plicss is the CLI for the plicss stylesheet tools.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pli-cadastros/plicss"
)

func main() {
	os.Exit(execute())
}

// execute runs the root command and maps its error to a process exit code.
// Lint outcomes carry a bare ExitError and print nothing extra.
func execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return plicss.ExitOK
	}
	var ee *plicss.ExitError
	if !errors.As(err, &ee) || ee.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return plicss.ExitCode(err)
}
