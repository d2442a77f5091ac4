package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenarioYAML = `name: cli_smoke
description: CLI smoke scenario.
steps:
  - store:
      value: foo
      as: k
  - get_str:
      key: $k
      expect: foo
assertions:
  - type: call_count
    method: Cache.Store
    count: 1
`

const failingScenarioYAML = `name: cli_failing
description: Scenario with a wrong expectation.
steps:
  - store:
      value: foo
      as: k
  - get_str:
      key: $k
      expect: bar
assertions:
  - type: call_count
    method: Cache.Store
    count: 1
`

// disableTracing keeps setupTracing a no-op regardless of the
// machine's environment.
func disableTracing(t *testing.T) {
	t.Helper()
	t.Setenv("RECALL_OTEL_ENABLED", "false")
}

// writeScenario writes scenario YAML to a temp file and returns its path.
func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCommand_PassingScenario(t *testing.T) {
	disableTracing(t)
	path := writeScenario(t, "cli_smoke.yaml", passingScenarioYAML)

	stdout, _, err := executeCommand(t, "run", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ cli_smoke")
	assert.Contains(t, stdout, "step 1: store 'foo' -> key-000 ($k)")
	assert.Contains(t, stdout, "assert call_count Cache.Store == 1: pass")
	assert.Contains(t, stdout, "Cache.Store was called 1 times:")
	assert.Contains(t, stdout, "result: PASS")
	assert.Contains(t, stdout, "Run Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestRunCommand_FailingScenario(t *testing.T) {
	disableTracing(t)
	path := writeScenario(t, "cli_failing.yaml", failingScenarioYAML)

	stdout, _, err := executeCommand(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stdout, "✗ cli_failing")
	assert.Contains(t, stdout, "error: step 2: get_str $k: expected 'bar', got 'foo'")
	assert.Contains(t, stdout, "result: FAIL")
	assert.Contains(t, stdout, "Run Summary: 0 passed, 1 failed, 1 total")
}

func TestRunCommand_MultipleScenarios(t *testing.T) {
	disableTracing(t)
	pass := writeScenario(t, "pass.yaml", passingScenarioYAML)
	fail := writeScenario(t, "fail.yaml", failingScenarioYAML)

	stdout, _, err := executeCommand(t, "run", pass, fail)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Run Summary: 1 passed, 1 failed, 2 total")
}

func TestRunCommand_UnparsableScenario(t *testing.T) {
	disableTracing(t)
	path := writeScenario(t, "broken.yaml", "name: [\n")

	stdout, _, err := executeCommand(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Load error:")
}

func TestRunCommand_JSONOutput(t *testing.T) {
	disableTracing(t)
	path := writeScenario(t, "cli_smoke.yaml", passingScenarioYAML)

	stdout, _, err := executeCommand(t, "run", "--format", "json", path)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "cli_smoke", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Report, "result: PASS")
}

func TestRunCommand_SQLiteBackend(t *testing.T) {
	disableTracing(t)
	path := writeScenario(t, "cli_smoke.yaml", passingScenarioYAML)
	db := filepath.Join(t.TempDir(), "recall.db")

	stdout, _, err := executeCommand(t, "run", "--store", "sqlite", "--db", db, path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ All scenarios passed")
	assert.FileExists(t, db)
}

func TestRunCommand_UnknownStoreKind(t *testing.T) {
	disableTracing(t)
	path := writeScenario(t, "cli_smoke.yaml", passingScenarioYAML)

	_, _, err := executeCommand(t, "run", "--store", "etcd", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown store kind "etcd"`)
}
