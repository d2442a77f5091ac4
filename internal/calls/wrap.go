package calls

import (
	"context"
	"log/slog"

	"github.com/roach88/recall/internal/kv"
)

// Op is the canonical shape of an instrumented operation: positional
// arguments in, one value out. Wrappers take and return Ops, so they
// compose by nesting without changing the operation's observable
// arguments or result.
type Op func(ctx context.Context, args ...any) (any, error)

// Counted wraps op so that each invocation first bumps the invocation
// counter for id, then runs op and returns its result untouched.
//
// The increment happens before op runs, so failed calls count too. A
// nil store skips counting entirely, and a failed increment is logged
// and swallowed: lost counts must never break the caller's own call.
func Counted(st kv.Store, id Identity, op Op) Op {
	return func(ctx context.Context, args ...any) (any, error) {
		if st != nil {
			if _, err := st.Incr(ctx, id.CounterKey()); err != nil {
				slog.Warn("call count increment failed",
					"method", id.String(),
					"error", err)
			}
		}
		return op(ctx, args...)
	}
}

// Recorded wraps op so that each invocation appends its rendered
// arguments to id's input log before op runs, and its encoded result to
// the output log after op returns. The two appends bracket the call:
// entry N of each log describes call N, and a crash inside op leaves an
// input with no matching output, which replay tolerates by truncating
// to the common prefix.
//
// Unlike counting, recording failures surface. A failed input append
// aborts the call before op runs, keeping both logs the same length. A
// failed output append (the store refused it, or op returned a value
// EncodeValue cannot represent) returns op's result together with a
// *RecordError, so the caller keeps the value but learns the history
// is short. A nil store disables recording.
func Recorded(st kv.Store, id Identity, op Op) Op {
	return func(ctx context.Context, args ...any) (any, error) {
		if st == nil {
			return op(ctx, args...)
		}

		if err := st.Append(ctx, id.InputsKey(), []byte(FormatArgs(args))); err != nil {
			return nil, &RecordError{Identity: id, Stage: StageInput, Err: err}
		}

		out, err := op(ctx, args...)
		if err != nil {
			// The input stays recorded without an output; the length
			// anomaly is the trace of the failed call.
			return out, err
		}

		encoded, err := EncodeValue(out)
		if err != nil {
			return out, &RecordError{Identity: id, Stage: StageOutput, Err: err}
		}
		if err := st.Append(ctx, id.OutputsKey(), encoded); err != nil {
			return out, &RecordError{Identity: id, Stage: StageOutput, Err: err}
		}
		return out, nil
	}
}
