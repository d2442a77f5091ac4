// Package harness provides scenario-driven conformance testing for the
// instrumented cache facade.
//
// The harness loads YAML scenario files, executes their steps against a
// fresh facade, evaluates assertions over the recorded call log, and
// renders a deterministic text report suitable for golden comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - store:
//	      value: foo
//	      as: first
//	  - get_str:
//	      key: $first
//	      expect: foo
//	  - get_int:
//	      key: key-001
//	      expect: 123
//	assertions:
//	  - type: call_count
//	    method: Cache.Store
//	    count: 1
//
// A store step writes one scalar and may bind the generated key to a
// name with "as"; later steps reference the binding as "$name". The
// get, get_str and get_int steps read a key back (raw bytes, string,
// integer) and optionally check the decoded value with "expect".
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - call_count: the method's call counter equals count
//   - log_lengths: both the input and output logs hold exactly count entries
//   - replay_lines: the replay transcript renders exactly count call lines
//
// # Deterministic Execution
//
// Each scenario runs against a fresh store and a sequential key
// generator, so generated keys are key-000, key-001, ... in step order
// and the rendered report is identical across runs. The report always
// ends with the replay transcript of Cache.Store, the facade's one
// instrumented method.
//
// # Usage
//
// Load a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/store_and_fetch.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Execute it:
//
//	result, err := harness.Run(ctx, scenario, harness.RunOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
