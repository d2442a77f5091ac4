package harness

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// ValidateScenarioYAML checks raw scenario YAML against the embedded
// CUE schema.
//
// This runs before strict decoding and catches structural mistakes
// (unknown step names, non-scalar values, bad assertion types) with
// CUE's positioned error messages.
func ValidateScenarioYAML(data []byte) error {
	schema, err := scenarioSchema()
	if err != nil {
		return err
	}
	if err := cueyaml.Validate(data, schema); err != nil {
		return fmt.Errorf("scenario does not match schema: %w", err)
	}
	return nil
}

// scenarioSchema compiles the embedded schema and returns the
// #Scenario definition.
func scenarioSchema() (cue.Value, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to compile scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("scenario schema has no #Scenario definition: %w", err)
	}
	return def, nil
}
