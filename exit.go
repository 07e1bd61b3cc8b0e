package plicss

import (
	"errors"
	"fmt"
)

// Process exit codes shared by every command.
const (
	ExitOK         = 0
	ExitFatal      = 1
	ExitViolations = 2
	ExitAdvisory   = 3
)

// ExitError carries a process exit code up to main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Fatal wraps err as an exit-1 error.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitFatal, Err: err}
}

// ExitCode extracts the exit code for err. Nil maps to ExitOK and plain
// errors to ExitFatal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFatal
}

// ErrMissingInput is returned when a tool's input document does not exist.
var ErrMissingInput = errors.New("input not found")

func missingInput(path string) error {
	return Fatal(fmt.Errorf("%w: %s", ErrMissingInput, path))
}
