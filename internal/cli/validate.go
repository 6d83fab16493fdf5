package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/braincrumbs/internal/catalog"
	"github.com/roach88/braincrumbs/internal/course"
)

// ValidationIssue is one catalog problem.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
	Warning bool   `json:"warning,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Courses  int               `json:"courses"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog-file>",
		Short: "Validate a course catalog file",
		Long: `Validate a YAML or CUE course catalog without opening the progress store.

Checks syntax, the catalog schema, and course structure (levels, lesson
types, quiz answers, duplicate ids and slugs).

Exit codes:
  0 - Catalog valid (warnings allowed)
  1 - Catalog has errors
  2 - Command error (file not found, unsupported format)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cat, errs := catalog.LoadFile(path)

	// File-level problems are command errors, not validation failures.
	if cat == nil && len(errs) == 1 {
		var loadErr *catalog.LoadError
		if errors.As(errs[0], &loadErr) && isFileLevel(loadErr.Code) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
	}

	result := ValidationResult{Valid: cat != nil}
	if cat != nil {
		result.Courses = cat.Len()
	}
	for _, err := range errs {
		issue := toIssue(err)
		if issue.Warning {
			result.Warnings = append(result.Warnings, issue)
		} else {
			result.Errors = append(result.Errors, issue)
		}
	}
	formatter.VerboseLog("Checked %s: %d error(s), %d warning(s)", path, len(result.Errors), len(result.Warnings))

	if !result.Valid && len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

func isFileLevel(code string) bool {
	switch code {
	case catalog.ErrCodeNotFound, catalog.ErrCodeReadFailed, catalog.ErrCodeFormat:
		return true
	}
	return false
}

func toIssue(err error) ValidationIssue {
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
		}
		return issue
	}
	var ve course.ValidationError
	if errors.As(err, &ve) {
		return ValidationIssue{Code: ve.Code, Message: ve.Message, Field: ve.Field, Warning: ve.Warning}
	}
	return ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.OK(result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "⚠ %s: %s: %s\n", w.Code, w.Field, w.Message)
	}
	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d course(s))\n", result.Courses)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	first := result.Errors[0]
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    first.Code,
				Message: first.Message,
			},
		}
		if err := formatter.Respond(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range append(result.Errors, result.Warnings...) {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Field, issue.Message)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
