// Package calls instruments store-backed operations with invocation
// counting and call-history recording, and replays recorded history as
// a readable call log.
//
// Operations are wrapped, not introspected: an Op is an explicit
// function value, its Identity is an explicit argument, and the two
// wrappers compose by nesting:
//
//	op := calls.Counted(st, id, calls.Recorded(st, id, rawOp))
//
// Per identity, three keys carry all instrumentation state:
//
//	<identity>          invocation counter (base-10 ASCII)
//	<identity>:inputs   rendered argument tuples, one per call
//	<identity>:outputs  encoded return values, one per call
//
// The input append happens before the wrapped call and the output
// append after it, so entry N of each list describes call N. A call
// that dies in between leaves an input with no output; replay tolerates
// that by rendering only the common prefix.
//
// Failure policy is asymmetric on purpose: counting is telemetry and
// degrades silently (a failed increment is logged and swallowed), while
// recording is part of the call's contract and surfaces a *RecordError.
package calls
