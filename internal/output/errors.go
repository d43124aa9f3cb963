package output

import "errors"

// Exit codes following sysexits.h convention
const (
	ExitOK          = 0  // Success
	ExitGeneral     = 1  // General error
	ExitUsage       = 2  // Invalid usage / bad arguments / rejected input
	ExitNotFound    = 4  // Account not found
	ExitConflict    = 5  // Conflict (account already exists)
	ExitConfigError = 10 // Configuration or master key error
	ExitCrypto      = 12 // Encryption or decryption failure
)

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
	Err      error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// Wrap creates a CLIError carrying err's message
func Wrap(code int, err error) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  err.Error(),
		Err:      err,
	}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// Report prints err via the formatter and returns the exit code to use.
// The caller decides whether to exit.
func Report(formatter Formatter, err error) int {
	if err == nil {
		return ExitOK
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		formatter.PrintError(cliErr)
		if cliErr.Hint != "" {
			formatter.PrintHint(cliErr.Hint)
		}
		return cliErr.ExitCode
	}

	formatter.PrintError(err)
	return ExitGeneral
}
