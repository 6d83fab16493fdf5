package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_OK(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.OK(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_FailJSON(t *testing.T) {
	tests := []struct {
		name    string
		details any
	}{
		{"no_details", nil},
		{"details", []string{"courses.yaml:4:3: E009: level: conflicting values"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail(ExitCommandError, ErrCodeStore, "database locked", tt.details)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Equal(t, "E013: database locked", err.Error())

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "E013", resp.Error.Code)
			assert.Equal(t, "database locked", resp.Error.Message)
			assert.Equal(t, tt.details != nil, resp.Error.Details != nil)
		})
	}
}

func TestOutputFormatter_FailText(t *testing.T) {
	details := map[string]string{"lesson": "l9"}

	for _, verbose := range []bool{false, true} {
		t.Run(fmt.Sprintf("verbose=%v", verbose), func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: verbose}

			_ = formatter.Fail(ExitCommandError, ErrCodeLessonNotFound, "lesson not found", details)
			assert.Contains(t, buf.String(), "Error [E012]: lesson not found")
			if verbose {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_FailIsReported(t *testing.T) {
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}

	err := formatter.Fail(ExitFailure, ErrCodeGeneric, "boom", nil)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.Reported)
	assert.False(t, NewExitError(ExitFailure, "boom").Reported)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
	}{
		{"verbose_enabled", true},
		{"verbose_disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			formatter.VerboseLog("Loaded %d course(s)", 2)

			if tt.verbose {
				assert.Equal(t, "Loaded 2 course(s)\n", buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesDiag(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, Diag: diag, Verbose: true}

	formatter.VerboseLog("diagnostic")

	assert.Empty(t, out.String())
	assert.Contains(t, diag.String(), "diagnostic")
}

func TestOutputFormatter_RespondIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Respond(CLIResponse{Status: "ok", SessionID: "s-1"}))
	assert.Contains(t, buf.String(), "\n  \"status\": \"ok\"")
	assert.Contains(t, buf.String(), `"session_id": "s-1"`)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit_error", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", NewExitError(ExitSuccess, "ok")), ExitSuccess},
		{"command_error", commandError("invalid configuration", errors.New("bad type")), ExitCommandError},
		{"plain", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("disk full")
	err := commandError("progress not saved", inner)

	assert.Equal(t, "progress not saved: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.False(t, err.Reported)
}
