package harness

import (
	"fmt"
	"strings"
)

// Result is the outcome of executing a scenario.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string `json:"scenario"`

	// Pass indicates overall success.
	// True when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Lines is the execution log: one entry per step and one per
	// assertion, in execution order.
	Lines []string `json:"lines"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Replay is the rendered call transcript of the instrumented
	// method, exactly as a replay would print it.
	Replay string `json:"replay,omitempty"`
}

// NewResult creates a new passing result for the named scenario.
// Used as the starting point for scenario execution.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Lines:    []string{},
		Errors:   []string{},
	}
}

// AddLine appends one entry to the execution log.
func (r *Result) AddLine(line string) {
	r.Lines = append(r.Lines, line)
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Report renders the result as a deterministic text report.
//
// The layout is stable so reports can be compared against golden
// files: a scenario header, the execution log, the replay transcript,
// any failure messages, and a final PASS or FAIL verdict.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario)
	for _, line := range r.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if r.Replay != "" {
		b.WriteString("replay:\n")
		b.WriteString(r.Replay)
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", msg)
	}
	if r.Pass {
		b.WriteString("result: PASS\n")
	} else {
		b.WriteString("result: FAIL\n")
	}
	return b.String()
}
