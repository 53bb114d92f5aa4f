package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	assert.Equal(t, []string{"credits_variants.yaml", "empty_export.yaml", "full_registry.yaml"}, names)
}

func TestFindScenariosFilter(t *testing.T) {
	dir := filepath.Join("testdata", "scenarios")

	files, err := FindScenarios(dir, "*_registry")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "full_registry.yaml", filepath.Base(files[0]))

	files, err = FindScenarios(dir, "{credits,empty}_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = FindScenarios(dir, "nothing-*")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindScenariosInvalidFilter(t *testing.T) {
	_, err := FindScenarios(filepath.Join("testdata", "scenarios"), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestFindScenariosSkipsGoldenAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	for _, name := range []string{"a.yaml", "b.yml", "notes.txt", "golden/c.yaml", "nested/d.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "nested", "d.yaml"),
	}, files)
}

func TestFindScenariosMissingDir(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "absent"), "")
	require.Error(t, err)
}
