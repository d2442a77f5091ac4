package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its report against a
// golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the report doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts RunOptions) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's report against the named golden
// file. This is useful when you've already run a scenario and want to
// compare the result without re-running.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(result.Report()))
}
