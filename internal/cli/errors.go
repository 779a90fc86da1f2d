package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// UsageError marks missing or malformed arguments. The command's usage is
// printed with the error.
type UsageError struct {
	Cmd *cobra.Command
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// CommandError marks a failure inside a command, such as an API error. It is
// reported but does not change the exit status.
type CommandError struct {
	Err error
}

func (e *CommandError) Error() string { return e.Err.Error() }
func (e *CommandError) Unwrap() error { return e.Err }

func usageErrorf(cmd *cobra.Command, format string, args ...any) error {
	return &UsageError{Cmd: cmd, Err: fmt.Errorf(format, args...)}
}

// usageArgs wraps a cobra argument validator so its failures become usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &UsageError{Cmd: cmd, Err: err}
		}
		return nil
	}
}
