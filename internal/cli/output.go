package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // scenarios failed or catalog invalid
	ExitCommandError = 2 // unknown course or lesson, store unavailable, bad input
)

// ExitError carries the exit code main should use.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set when the error was already written to the user's
	// output, so main must not print it again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an unreported ExitError.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// commandError wraps err as an ExitCommandError.
func commandError(message string, err error) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope every command prints in json format.
type CLIResponse struct {
	Status    string    `json:"status"` // "ok" or "error"
	Data      any       `json:"data,omitempty"`
	Error     *CLIError `json:"error,omitempty"`
	SessionID string    `json:"session_id,omitempty"` // quiz runs only
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"` // E001-E015, catalog E004-E010, course E201-E208
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results to Writer and diagnostics to Diag,
// so json output on Writer stays parseable.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Diag    io.Writer // nil means Writer
	Verbose bool
}

// newFormatter builds the formatter for a command from global options.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
}

func (f *OutputFormatter) diag() io.Writer {
	if f.Diag == nil {
		return f.Writer
	}
	return f.Diag
}

// Respond writes resp as indented JSON.
func (f *OutputFormatter) Respond(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// OK writes data in a success envelope.
func (f *OutputFormatter) OK(data any) error {
	return f.Respond(CLIResponse{Status: "ok", Data: data})
}

// Fail prints the error in the configured format and returns it as a
// reported ExitError with exitCode. Text output shows details only when
// verbose.
func (f *OutputFormatter) Fail(exitCode int, code, message string, details any) error {
	if f.Format == "json" {
		_ = f.Respond(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
		if f.Verbose && details != nil {
			fmt.Fprintf(f.Writer, "Details: %v\n", details)
		}
	}

	err := NewExitError(exitCode, code+": "+message)
	err.Reported = true
	return err
}

// VerboseLog prints a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.diag(), format+"\n", args...)
	}
}
