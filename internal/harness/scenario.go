package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative test case for the cache facade.
type Scenario struct {
	// Name identifies the scenario. It is also the golden file name,
	// so it should be filesystem-friendly.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Steps are the facade operations to execute, in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checks evaluated against the call log after all
	// steps have run.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one facade operation. Exactly one of the operation fields
// must be set.
type Step struct {
	Store  *StoreStep `yaml:"store,omitempty"`
	Get    *GetStep   `yaml:"get,omitempty"`
	GetStr *GetStep   `yaml:"get_str,omitempty"`
	GetInt *GetStep   `yaml:"get_int,omitempty"`
}

// StoreStep writes one scalar value through the facade.
type StoreStep struct {
	// Value is the scalar to store. YAML scalars decode to string,
	// int or float64.
	Value any `yaml:"value"`

	// As optionally binds the generated key to a name, so later steps
	// can reference it as $name.
	As string `yaml:"as,omitempty"`
}

// GetStep reads one key back through the facade.
type GetStep struct {
	// Key is the key to read: either a literal key or a $name
	// reference to a binding introduced by an earlier store step.
	Key string `yaml:"key"`

	// Expect optionally pins the decoded value. A mismatch (or an
	// absent key) fails the scenario.
	Expect any `yaml:"expect,omitempty"`
}

// Assertion is a check over the recorded call log.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Method is the instrumented method identity, e.g. "Cache.Store".
	Method string `yaml:"method"`

	// Count is the expected value for the assertion type.
	Count int64 `yaml:"count"`
}

// Supported assertion types.
const (
	// AssertCallCount checks the method's call counter.
	AssertCallCount = "call_count"

	// AssertLogLengths checks that the input and output logs both hold
	// exactly count entries.
	AssertLogLengths = "log_lengths"

	// AssertReplayLines checks how many call lines the replay
	// transcript renders.
	AssertReplayLines = "replay_lines"
)

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
//
// The bytes are first checked against the embedded CUE schema, which
// reports structural mistakes with positions, then strictly decoded
// (unknown fields are errors) and validated field by field.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := ValidateScenarioYAML(data); err != nil {
		return nil, err
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and step/assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("scenario description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario must have at least one step")
	}
	for i, step := range s.Steps {
		if err := validateStep(&step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("scenario must have at least one assertion")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(&assertion); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func validateStep(step *Step) error {
	ops := 0
	if step.Store != nil {
		ops++
	}
	if step.Get != nil {
		ops++
	}
	if step.GetStr != nil {
		ops++
	}
	if step.GetInt != nil {
		ops++
	}
	if ops == 0 {
		return fmt.Errorf("step must name one operation (store, get, get_str, get_int)")
	}
	if ops > 1 {
		return fmt.Errorf("step names %d operations, want exactly one", ops)
	}

	if step.Store != nil {
		if step.Store.Value == nil {
			return fmt.Errorf("store: value is required")
		}
		if !isScalar(step.Store.Value) {
			return fmt.Errorf("store: value must be a string or number, got %T", step.Store.Value)
		}
	}

	for _, g := range []struct {
		verb string
		step *GetStep
	}{
		{"get", step.Get},
		{"get_str", step.GetStr},
		{"get_int", step.GetInt},
	} {
		if g.step == nil {
			continue
		}
		if g.step.Key == "" {
			return fmt.Errorf("%s: key is required", g.verb)
		}
		if g.step.Expect != nil && !isScalar(g.step.Expect) {
			return fmt.Errorf("%s: expect must be a string or number, got %T", g.verb, g.step.Expect)
		}
	}

	if step.GetInt != nil && step.GetInt.Expect != nil {
		if _, ok := asInt64(step.GetInt.Expect); !ok {
			return fmt.Errorf("get_int: expect must be an integer, got %v", step.GetInt.Expect)
		}
	}
	return nil
}

func validateAssertion(a *Assertion) error {
	switch a.Type {
	case AssertCallCount, AssertLogLengths, AssertReplayLines:
	case "":
		return fmt.Errorf("assertion type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	if a.Method == "" {
		return fmt.Errorf("%s: method is required", a.Type)
	}
	if a.Count < 0 {
		return fmt.Errorf("%s: count must not be negative, got %d", a.Type, a.Count)
	}
	return nil
}

// isScalar reports whether a YAML-decoded value is one of the scalar
// kinds a scenario may store or expect.
func isScalar(v any) bool {
	switch v.(type) {
	case string, int, int64, float64:
		return true
	}
	return false
}

// asInt64 extracts an integer from a YAML-decoded value.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
