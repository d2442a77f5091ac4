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

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitCommandError, "store not found")
	assert.Equal(t, "store not found", plain.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(plain))

	underlying := errors.New("connection refused")
	wrapped := WrapExitError(ExitFailure, "failed to open store", underlying)
	assert.Equal(t, "failed to open store: connection refused", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, underlying)
}

func TestGetExitCode_PlainError(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
}

func TestGetExitCode_WrappedExitError(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]any{"flushed": true}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeScenario, "invalid scenario", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenario, resp.Error.Code)
	assert.Equal(t, "invalid scenario", resp.Error.Message)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error(ErrCodeStore, "store unreachable", nil))
	assert.Equal(t, "Error [E_STORE]: store unreachable\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	quiet := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}
	quiet.VerboseLog("should not appear")
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())

	verbose := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}
	verbose.VerboseLog("checked %d file(s)", 3)
	assert.Empty(t, out.String(), "verbose logs must not corrupt JSON output")
	assert.Equal(t, "checked 3 file(s)\n", errOut.String())
}
