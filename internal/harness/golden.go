package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qplan/internal/value"
)

// Snapshot captures every step of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Steps        []StepResult `json:"steps"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization, which only handles values, primitives, and plain maps.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		m := map[string]any{"name": step.Name}
		if step.Error != "" {
			m["error"] = step.Error
			steps[i] = m
			continue
		}

		rows := make([]any, len(step.Rows))
		for j, row := range step.Rows {
			rows[j] = map[string]value.Value(row)
		}
		m["sql"] = step.SQL
		m["values"] = step.Values
		m["requires_materialization"] = step.RequiresMaterialization
		m["rows"] = rows
		m["count"] = step.Count
		steps[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"steps":         steps,
	}
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Steps: result.Steps}
	return value.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares every step against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
