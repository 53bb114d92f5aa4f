package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The golden file pins the complete stable pack: fingerprint derivation,
// tie-breaking, capability order and canonical encoding.
func TestRunWithGoldenCreditsVariants(t *testing.T) {
	result, err := RunWithGolden(t, loadFixture(t, "credits_variants"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "credits.golden"),
		GoldenPath(filepath.Join("scenarios", "credits.yaml")))
}

func TestUpdateAndCompareGolden(t *testing.T) {
	scenarioFile := filepath.Join(t.TempDir(), "credits.yaml")
	result, err := Run(loadFixture(t, "credits_variants"))
	require.NoError(t, err)

	match, found, err := CompareGolden(scenarioFile, result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, match)

	require.NoError(t, UpdateGolden(scenarioFile, result))
	match, found, err = CompareGolden(scenarioFile, result)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, match)

	require.NoError(t, os.WriteFile(GoldenPath(scenarioFile), []byte(`{}`), 0644))
	match, found, err = CompareGolden(scenarioFile, result)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, match)
}
