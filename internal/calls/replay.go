package calls

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/recall/internal/kv"
)

// CallHistory is the recorded activity of one method: its invocation
// count plus the paired input/output entries. When the stored logs
// disagree on length the shorter one wins and Truncated is set; the
// surviving pairs still line up index for index.
type CallHistory struct {
	Identity  Identity
	Count     int64
	Inputs    []string
	Outputs   []string
	Truncated bool
}

// Calls returns the number of fully recorded calls (paired entries).
func (h CallHistory) Calls() int {
	return len(h.Inputs)
}

// History reads the counter and both logs for id. It performs no
// mutation: reading twice with no intervening instrumented calls yields
// identical results. A counter never incremented reads as zero, and a
// method never recorded yields empty logs - neither is an error. A nil
// store yields an empty history.
func History(ctx context.Context, st kv.Store, id Identity) (CallHistory, error) {
	h := CallHistory{Identity: id}
	if st == nil {
		return h, nil
	}

	raw, ok, err := st.Get(ctx, id.CounterKey())
	if err != nil {
		return h, fmt.Errorf("read counter %s: %w", id.CounterKey(), err)
	}
	if ok {
		count, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return h, fmt.Errorf("counter %s holds %q: %w", id.CounterKey(), raw, err)
		}
		h.Count = count
	}

	inputs, err := st.List(ctx, id.InputsKey())
	if err != nil {
		return h, fmt.Errorf("read inputs %s: %w", id.InputsKey(), err)
	}
	outputs, err := st.List(ctx, id.OutputsKey())
	if err != nil {
		return h, fmt.Errorf("read outputs %s: %w", id.OutputsKey(), err)
	}

	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}
	h.Truncated = len(inputs) != len(outputs)
	h.Inputs = make([]string, 0, n)
	h.Outputs = make([]string, 0, n)
	for i := 0; i < n; i++ {
		h.Inputs = append(h.Inputs, string(inputs[i]))
		h.Outputs = append(h.Outputs, string(outputs[i]))
	}
	return h, nil
}

// Replay renders id's recorded history to w:
//
//	Cache.Store was called 2 times:
//	Cache.Store(*('foo',)) -> key-000
//	Cache.Store(*(123,)) -> key-001
//
// A nil store renders nothing at all.
func Replay(ctx context.Context, st kv.Store, id Identity, w io.Writer) error {
	if st == nil {
		return nil
	}
	h, err := History(ctx, st, id)
	if err != nil {
		return err
	}
	return h.Render(w)
}

// Render writes the call-log text for an already loaded history.
func (h CallHistory) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s was called %d times:\n", h.Identity, h.Count); err != nil {
		return err
	}
	for i := range h.Inputs {
		if _, err := fmt.Fprintf(w, "%s(*%s) -> %s\n", h.Identity, h.Inputs[i], h.Outputs[i]); err != nil {
			return err
		}
	}
	return nil
}
