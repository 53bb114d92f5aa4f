package determinism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symbolpack/internal/ir"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	v, err := ir.DecodeGeneric([]byte(s))
	require.NoError(t, err)
	return v
}

func TestDiffIdentical(t *testing.T) {
	doc := `{"a": [1, {"b": "x"}], "c": null}`
	assert.Equal(t, []string{}, Diff(decode(t, doc), decode(t, doc)))
}

func TestDiffPaths(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected []string
	}{
		{"scalar change", `{"a": 1}`, `{"a": 2}`, []string{"$.a"}},
		{"missing key", `{"a": 1, "b": 2}`, `{"a": 1}`, []string{"$.b"}},
		{"extra key", `{"a": 1}`, `{"a": 1, "z": 2}`, []string{"$.z"}},
		{"nested", `{"x": {"y": {"z": true}}}`, `{"x": {"y": {"z": false}}}`, []string{"$.x.y.z"}},
		{"array element", `{"l": ["a", "b"]}`, `{"l": ["a", "c"]}`, []string{"$.l[1]"}},
		{"array length", `{"l": [1]}`, `{"l": [1, 2, 3]}`, []string{"$.l[1]", "$.l[2]"}},
		{"type change", `{"a": {"b": 1}}`, `{"a": [1]}`, []string{"$.a"}},
		{"root", `[1]`, `{"a": 1}`, []string{"$"}},
		{"multiple sorted", `{"b": 1, "a": 1}`, `{"b": 2, "a": 2}`, []string{"$.a", "$.b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Diff(decode(t, tt.a), decode(t, tt.b)))
		})
	}
}

func TestDiffNumberSpelling(t *testing.T) {
	assert.Equal(t, []string{}, Diff(decode(t, `{"n": 1.0}`), decode(t, `{"n": 1}`)))
	assert.Equal(t, []string{}, Diff(decode(t, `{"n": 0.950}`), decode(t, `{"n": 0.95}`)))
}
