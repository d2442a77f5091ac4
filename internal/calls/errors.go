package calls

import (
	"errors"
	"fmt"
)

// RecordStage identifies which half of a call record failed to persist.
type RecordStage string

const (
	// StageInput is the argument append that precedes the wrapped call.
	StageInput RecordStage = "input"

	// StageOutput is the result append that follows the wrapped call.
	StageOutput RecordStage = "output"
)

// RecordError reports a call-history append that did not reach the
// store. Counting failures are swallowed; recording failures are not:
// an input-stage error aborts the call before the wrapped operation
// runs, and an output-stage error accompanies the operation's result so
// the caller keeps the value but learns the recorded history is short.
type RecordError struct {
	// Identity is the instrumented method whose record is incomplete.
	Identity Identity

	// Stage says which append failed.
	Stage RecordStage

	// Err is the underlying store error.
	Err error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s %s: %v", e.Identity, e.Stage, e.Err)
}

// Unwrap exposes the underlying store error to errors.Is/errors.As.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsRecordError returns true if the error is a RecordError.
// Uses errors.As to handle wrapped errors.
func IsRecordError(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}
