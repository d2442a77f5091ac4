package harness

import (
	"context"
	"fmt"

	"github.com/roach88/recall/internal/calls"
	"github.com/roach88/recall/internal/kv"
)

// AssertionContext provides the store and context assertions read from.
type AssertionContext struct {
	Ctx   context.Context
	Store kv.Store
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // assertion type for categorization
	Method   string // instrumented method identity
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assert %s %s: want %s, got %s", e.Type, e.Method, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the recorded call
// log. A pass/fail line per assertion is appended to the result's
// execution log; failure messages are returned for the caller to
// record.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for _, assertion := range assertions {
		status := "pass"
		if err := evaluateAssertion(&assertion, actx); err != nil {
			status = "fail"
			failures = append(failures, err.Error())
		}
		result.AddLine(fmt.Sprintf("assert %s %s == %d: %s",
			assertion.Type, assertion.Method, assertion.Count, status))
	}
	return failures
}

func evaluateAssertion(a *Assertion, actx *AssertionContext) error {
	id, err := calls.ParseIdentity(a.Method)
	if err != nil {
		return fmt.Errorf("assert %s %s: %w", a.Type, a.Method, err)
	}

	switch a.Type {
	case AssertCallCount:
		return assertCallCount(actx, id, a)
	case AssertLogLengths:
		return assertLogLengths(actx, id, a)
	case AssertReplayLines:
		return assertReplayLines(actx, id, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertCallCount checks the method's call counter against count.
func assertCallCount(actx *AssertionContext, id calls.Identity, a *Assertion) error {
	h, err := calls.History(actx.Ctx, actx.Store, id)
	if err != nil {
		return fmt.Errorf("assert %s %s: %w", a.Type, a.Method, err)
	}
	if h.Count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Method:   a.Method,
			Expected: fmt.Sprintf("%d", a.Count),
			Actual:   fmt.Sprintf("%d", h.Count),
		}
	}
	return nil
}

// assertLogLengths checks that the raw input and output logs both hold
// exactly count entries. Unlike replay_lines this reads the logs
// directly, so it catches a one-sided log left by a failed call.
func assertLogLengths(actx *AssertionContext, id calls.Identity, a *Assertion) error {
	inputs, err := actx.Store.List(actx.Ctx, id.InputsKey())
	if err != nil {
		return fmt.Errorf("assert %s %s: %w", a.Type, a.Method, err)
	}
	outputs, err := actx.Store.List(actx.Ctx, id.OutputsKey())
	if err != nil {
		return fmt.Errorf("assert %s %s: %w", a.Type, a.Method, err)
	}
	if int64(len(inputs)) != a.Count || int64(len(outputs)) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Method:   a.Method,
			Expected: fmt.Sprintf("%d", a.Count),
			Actual:   fmt.Sprintf("inputs %d outputs %d", len(inputs), len(outputs)),
		}
	}
	return nil
}

// assertReplayLines checks how many call lines a replay would render,
// which is the paired length after truncation.
func assertReplayLines(actx *AssertionContext, id calls.Identity, a *Assertion) error {
	h, err := calls.History(actx.Ctx, actx.Store, id)
	if err != nil {
		return fmt.Errorf("assert %s %s: %w", a.Type, a.Method, err)
	}
	if int64(h.Calls()) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Method:   a.Method,
			Expected: fmt.Sprintf("%d", a.Count),
			Actual:   fmt.Sprintf("%d", h.Calls()),
		}
	}
	return nil
}
