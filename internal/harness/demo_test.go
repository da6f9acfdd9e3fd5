package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLibraryScenarios runs the checked-in scenarios under testdata/scenarios
// at the project root. They double as examples for `qplan test`.
func TestLibraryScenarios(t *testing.T) {
	paths, err := filepath.Glob("../../testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err, "failed to load scenario from %s", path)
			assert.NotEmpty(t, scenario.Description, "scenario should have description")

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario %s failed:\n%v", scenario.Name, result.Errors)
		})
	}
}
