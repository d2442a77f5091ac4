package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recall/internal/kv"
)

func storeScenario(steps []Step, assertions []Assertion) *Scenario {
	return &Scenario{
		Name:        "inline",
		Description: "Constructed in a test.",
		Steps:       steps,
		Assertions:  assertions,
	}
}

func TestRun_StoreBindsKeys(t *testing.T) {
	scenario := storeScenario(
		[]Step{
			{Store: &StoreStep{Value: "foo", As: "first"}},
			{Store: &StoreStep{Value: 123}},
			{GetStr: &GetStep{Key: "$first", Expect: "foo"}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 2},
			{Type: AssertLogLengths, Method: "Cache.Store", Count: 2},
		},
	)

	result, err := Run(context.Background(), scenario, RunOptions{})
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Lines, 5)
	assert.Equal(t, "step 1: store 'foo' -> key-000 ($first)", result.Lines[0])
	assert.Equal(t, "step 2: store 123 -> key-001", result.Lines[1])
	assert.Equal(t, "step 3: get_str $first -> 'foo'", result.Lines[2])
	assert.Equal(t, "assert call_count Cache.Store == 2: pass", result.Lines[3])
	assert.Contains(t, result.Replay, "Cache.Store was called 2 times:")
	assert.Contains(t, result.Replay, "Cache.Store(*(123,)) -> key-001")
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := storeScenario(
		[]Step{
			{Store: &StoreStep{Value: "foo", As: "k"}},
			{GetStr: &GetStep{Key: "$k", Expect: "bar"}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 1},
		},
	)

	result, err := Run(context.Background(), scenario, RunOptions{})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "step 2: get_str $k: expected 'bar', got 'foo'", result.Errors[0])
}

func TestRun_UnknownBinding(t *testing.T) {
	scenario := storeScenario(
		[]Step{
			{Get: &GetStep{Key: "$nope"}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 0},
		},
	)

	result, err := Run(context.Background(), scenario, RunOptions{})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unknown binding $nope")
	assert.Equal(t, "step 1: get $nope -> error", result.Lines[0])
}

func TestRun_AbsentKeyWithExpectation(t *testing.T) {
	scenario := storeScenario(
		[]Step{
			{GetInt: &GetStep{Key: "missing", Expect: 7}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 0},
		},
	)

	result, err := Run(context.Background(), scenario, RunOptions{})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, "step 1: get_int missing -> absent", result.Lines[0])
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected 7, key absent")
}

func TestRun_AbsentKeyWithoutExpectationPasses(t *testing.T) {
	scenario := storeScenario(
		[]Step{
			{Get: &GetStep{Key: "missing"}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 0},
		},
	)

	result, err := Run(context.Background(), scenario, RunOptions{})
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Equal(t, "step 1: get missing -> absent", result.Lines[0])
}

func TestRun_AssertionMismatch(t *testing.T) {
	scenario := storeScenario(
		[]Step{
			{Store: &StoreStep{Value: "foo"}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 5},
		},
	)

	result, err := Run(context.Background(), scenario, RunOptions{})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Lines, "assert call_count Cache.Store == 5: fail")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "assert call_count Cache.Store: want 5, got 1", result.Errors[0])
}

func TestRun_FlushesStoreFirst(t *testing.T) {
	ctx := context.Background()
	st := kv.NewMemory()
	_, err := st.Incr(ctx, "Cache.Store")
	require.NoError(t, err)

	scenario := storeScenario(
		[]Step{
			{Store: &StoreStep{Value: "foo"}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 1},
		},
	)

	result, err := Run(ctx, scenario, RunOptions{Store: st})
	require.NoError(t, err)
	assert.True(t, result.Pass, "stale counter should have been flushed, got errors: %v", result.Errors)
}

func TestRun_AgainstSQLite(t *testing.T) {
	st, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "harness.db"))
	require.NoError(t, err)
	defer st.Close()

	scenario := storeScenario(
		[]Step{
			{Store: &StoreStep{Value: 42, As: "answer"}},
			{GetInt: &GetStep{Key: "$answer", Expect: 42}},
		},
		[]Assertion{
			{Type: AssertCallCount, Method: "Cache.Store", Count: 1},
			{Type: AssertReplayLines, Method: "Cache.Store", Count: 1},
		},
	)

	result, err := Run(context.Background(), scenario, RunOptions{Store: st})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestEvaluateAssertions_OneSidedLog(t *testing.T) {
	ctx := context.Background()
	st := kv.NewMemory()
	require.NoError(t, st.Append(ctx, "Cache.Store:inputs", []byte("('x',)")))

	result := NewResult("one-sided")
	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertLogLengths, Method: "Cache.Store", Count: 0},
		{Type: AssertReplayLines, Method: "Cache.Store", Count: 0},
	}, &AssertionContext{Ctx: ctx, Store: st})

	require.Len(t, failures, 1)
	assert.Equal(t, "assert log_lengths Cache.Store: want 0, got inputs 1 outputs 0", failures[0])
	assert.Equal(t, "assert log_lengths Cache.Store == 0: fail", result.Lines[0])
	assert.Equal(t, "assert replay_lines Cache.Store == 0: pass", result.Lines[1])
}

func TestEvaluateAssertions_BadMethod(t *testing.T) {
	result := NewResult("bad-method")
	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertCallCount, Method: ".Store", Count: 0},
	}, &AssertionContext{Ctx: context.Background(), Store: kv.NewMemory()})

	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "assert call_count .Store:")
}

func TestAssertionError_Error(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCallCount,
		Method:   "Cache.Store",
		Expected: "2",
		Actual:   "3",
	}
	assert.Equal(t, "assert call_count Cache.Store: want 2, got 3", err.Error())
}

func TestResult_Report(t *testing.T) {
	result := NewResult("demo")
	result.AddLine("step 1: store 'foo' -> key-000")
	result.Replay = "Cache.Store was called 1 times:\nCache.Store(*('foo',)) -> key-000\n"

	report := result.Report()
	assert.True(t, strings.HasPrefix(report, "scenario: demo\n"))
	assert.Contains(t, report, "replay:\nCache.Store was called 1 times:\n")
	assert.True(t, strings.HasSuffix(report, "result: PASS\n"))

	result.AddError("step 1: something broke")
	report = result.Report()
	assert.Contains(t, report, "error: step 1: something broke\n")
	assert.True(t, strings.HasSuffix(report, "result: FAIL\n"))
}
