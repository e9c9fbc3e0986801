package errors

import "errors"

// Exit codes returned by the CLI.
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitFailure  = 2
)

// CommandError is an error that ends a command with a specific exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
	err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error {
	return e.err
}

// NewCommandError wraps err with an exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		err:         err,
	}
}

// ExitCode returns the exit code for err: ExitOK for nil, the code of a
// wrapped CommandError, ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitFailure
}
