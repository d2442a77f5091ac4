package harness

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/recall/internal/cache"
	"github.com/roach88/recall/internal/calls"
	"github.com/roach88/recall/internal/kv"
)

// RunOptions configures scenario execution.
type RunOptions struct {
	// Store is the backing store. Nil runs the scenario against a
	// fresh in-memory store.
	Store kv.Store

	// Keys overrides the facade's key generator. Nil uses a fresh
	// sequential generator, so generated keys are key-000, key-001, ...
	// in step order and reports are reproducible.
	Keys cache.KeyGenerator
}

// Run executes a scenario and returns its result.
//
// Steps run in order against a single facade constructed over the
// store, which is flushed first. Step failures and assertion failures
// are recorded on the result rather than returned; the error return is
// reserved for infrastructure problems such as an unreachable store.
func Run(ctx context.Context, scenario *Scenario, opts RunOptions) (*Result, error) {
	st := opts.Store
	if st == nil {
		st = kv.NewMemory()
	}
	keys := opts.Keys
	if keys == nil {
		keys = cache.NewSequenceKeys("")
	}

	c, err := cache.New(ctx, st, cache.WithKeys(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to construct facade: %w", err)
	}

	result := NewResult(scenario.Name)
	run := &scenarioRun{
		cache:    c,
		bindings: make(map[string]string),
		result:   result,
	}

	for i, step := range scenario.Steps {
		n := i + 1
		switch {
		case step.Store != nil:
			run.runStore(ctx, n, step.Store)
		case step.Get != nil:
			run.runGet(ctx, n, step.Get)
		case step.GetStr != nil:
			run.runGetStr(ctx, n, step.GetStr)
		case step.GetInt != nil:
			run.runGetInt(ctx, n, step.GetInt)
		}
	}

	actx := &AssertionContext{Ctx: ctx, Store: st}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	// The report always ends with the transcript of the facade's one
	// instrumented method.
	var replay bytes.Buffer
	if err := calls.Replay(ctx, st, cache.StoreIdentity, &replay); err != nil {
		result.AddError(fmt.Sprintf("replay %s: %v", cache.StoreIdentity, err))
	}
	result.Replay = replay.String()

	slog.Debug("scenario executed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// scenarioRun carries the mutable state of one scenario execution.
type scenarioRun struct {
	cache    *cache.Cache
	bindings map[string]string
	result   *Result
}

// resolveKey resolves a $name reference to a bound key. Literal keys
// pass through untouched.
func (r *scenarioRun) resolveKey(ref string) (string, error) {
	if !strings.HasPrefix(ref, "$") {
		return ref, nil
	}
	key, ok := r.bindings[strings.TrimPrefix(ref, "$")]
	if !ok {
		return "", fmt.Errorf("unknown binding %s", ref)
	}
	return key, nil
}

func (r *scenarioRun) runStore(ctx context.Context, n int, step *StoreStep) {
	rendered := calls.FormatScalar(step.Value)
	key, err := r.cache.Store(ctx, step.Value)
	if err != nil {
		r.result.AddLine(fmt.Sprintf("step %d: store %s -> error", n, rendered))
		r.result.AddError(fmt.Sprintf("step %d: store %s: %v", n, rendered, err))
		return
	}

	line := fmt.Sprintf("step %d: store %s -> %s", n, rendered, key)
	if step.As != "" {
		r.bindings[step.As] = key
		line = fmt.Sprintf("%s ($%s)", line, step.As)
	}
	r.result.AddLine(line)
}

func (r *scenarioRun) runGet(ctx context.Context, n int, step *GetStep) {
	key, err := r.resolveKey(step.Key)
	if err != nil {
		r.result.AddLine(fmt.Sprintf("step %d: get %s -> error", n, step.Key))
		r.result.AddError(fmt.Sprintf("step %d: get %s: %v", n, step.Key, err))
		return
	}

	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.result.AddLine(fmt.Sprintf("step %d: get %s -> error", n, step.Key))
		r.result.AddError(fmt.Sprintf("step %d: get %s: %v", n, step.Key, err))
		return
	}
	if !ok {
		r.result.AddLine(fmt.Sprintf("step %d: get %s -> absent", n, step.Key))
		if step.Expect != nil {
			r.result.AddError(fmt.Sprintf("step %d: get %s: expected %s, key absent",
				n, step.Key, calls.FormatScalar(step.Expect)))
		}
		return
	}

	r.result.AddLine(fmt.Sprintf("step %d: get %s -> %s", n, step.Key, calls.FormatScalar(raw)))
	if step.Expect == nil {
		return
	}
	want, err := calls.EncodeValue(step.Expect)
	if err != nil {
		r.result.AddError(fmt.Sprintf("step %d: get %s: %v", n, step.Key, err))
		return
	}
	if !bytes.Equal(raw, want) {
		r.result.AddError(fmt.Sprintf("step %d: get %s: expected %s, got %s",
			n, step.Key, calls.FormatScalar(want), calls.FormatScalar(raw)))
	}
}

func (r *scenarioRun) runGetStr(ctx context.Context, n int, step *GetStep) {
	key, err := r.resolveKey(step.Key)
	if err != nil {
		r.result.AddLine(fmt.Sprintf("step %d: get_str %s -> error", n, step.Key))
		r.result.AddError(fmt.Sprintf("step %d: get_str %s: %v", n, step.Key, err))
		return
	}

	got, ok, err := r.cache.GetString(ctx, key)
	if err != nil {
		r.result.AddLine(fmt.Sprintf("step %d: get_str %s -> error", n, step.Key))
		r.result.AddError(fmt.Sprintf("step %d: get_str %s: %v", n, step.Key, err))
		return
	}
	if !ok {
		r.result.AddLine(fmt.Sprintf("step %d: get_str %s -> absent", n, step.Key))
		if step.Expect != nil {
			r.result.AddError(fmt.Sprintf("step %d: get_str %s: expected %s, key absent",
				n, step.Key, calls.FormatScalar(step.Expect)))
		}
		return
	}

	r.result.AddLine(fmt.Sprintf("step %d: get_str %s -> %s", n, step.Key, calls.FormatScalar(got)))
	if step.Expect == nil {
		return
	}
	want, err := calls.EncodeValue(step.Expect)
	if err != nil {
		r.result.AddError(fmt.Sprintf("step %d: get_str %s: %v", n, step.Key, err))
		return
	}
	if got != string(want) {
		r.result.AddError(fmt.Sprintf("step %d: get_str %s: expected %s, got %s",
			n, step.Key, calls.FormatScalar(string(want)), calls.FormatScalar(got)))
	}
}

func (r *scenarioRun) runGetInt(ctx context.Context, n int, step *GetStep) {
	key, err := r.resolveKey(step.Key)
	if err != nil {
		r.result.AddLine(fmt.Sprintf("step %d: get_int %s -> error", n, step.Key))
		r.result.AddError(fmt.Sprintf("step %d: get_int %s: %v", n, step.Key, err))
		return
	}

	got, ok, err := r.cache.GetInt(ctx, key)
	if err != nil {
		r.result.AddLine(fmt.Sprintf("step %d: get_int %s -> error", n, step.Key))
		r.result.AddError(fmt.Sprintf("step %d: get_int %s: %v", n, step.Key, err))
		return
	}
	if !ok {
		r.result.AddLine(fmt.Sprintf("step %d: get_int %s -> absent", n, step.Key))
		if step.Expect != nil {
			r.result.AddError(fmt.Sprintf("step %d: get_int %s: expected %v, key absent",
				n, step.Key, step.Expect))
		}
		return
	}

	r.result.AddLine(fmt.Sprintf("step %d: get_int %s -> %d", n, step.Key, got))
	if step.Expect == nil {
		return
	}
	want, isInt := asInt64(step.Expect)
	if !isInt {
		r.result.AddError(fmt.Sprintf("step %d: get_int %s: expect %v is not an integer",
			n, step.Key, step.Expect))
		return
	}
	if got != want {
		r.result.AddError(fmt.Sprintf("step %d: get_int %s: expected %d, got %d",
			n, step.Key, want, got))
	}
}
