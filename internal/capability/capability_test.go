package capability

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symbolpack/internal/ir"
)

func anchorSet(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestDefaultRegistryOrder(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, "1.0", reg.Version())

	ids := []string{}
	for _, f := range reg.Features() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{
		"set_credits",
		"freeze_timer",
		"toggle_fog_reveal",
		"toggle_ai",
		"set_unit_cap",
		"toggle_instant_build_patch",
	}, ids)
}

func TestResolveCreditsOnly(t *testing.T) {
	reg, err := NewRegistry("test", []Feature{
		{ID: "set_credits", RequiredAnchors: []string{"credits_value"}},
		{ID: "freeze_timer", RequiredAnchors: []string{"freeze_timer_patch"}},
	})
	require.NoError(t, err)

	caps := NewResolver(reg).Resolve(anchorSet("credits_value"))
	require.Len(t, caps, 2)

	assert.Equal(t, ir.Capability{
		FeatureID:       "set_credits",
		Available:       true,
		State:           ir.StateVerified,
		ReasonCode:      ir.ReasonProbePass,
		RequiredAnchors: []string{"credits_value"},
	}, caps[0])
	assert.Equal(t, ir.Capability{
		FeatureID:       "freeze_timer",
		Available:       false,
		State:           ir.StateUnavailable,
		ReasonCode:      ir.ReasonRequiredMissing,
		RequiredAnchors: []string{"freeze_timer_patch"},
	}, caps[1])
	assert.Equal(t, 1, AvailableCount(caps))
}

func TestResolveNoPartialCredit(t *testing.T) {
	reg, err := NewRegistry("test", []Feature{
		{ID: "combo", RequiredAnchors: []string{"a", "b", "c"}},
	})
	require.NoError(t, err)

	r := NewResolver(reg)
	assert.False(t, r.Resolve(anchorSet("a", "b"))[0].Available)
	assert.True(t, r.Resolve(anchorSet("a", "b", "c", "extra"))[0].Available)
	assert.False(t, r.Resolve(anchorSet())[0].Available)
}

func TestResolveEmptyAnchorSet(t *testing.T) {
	caps := NewResolver(DefaultRegistry()).Resolve(nil)
	require.Len(t, caps, 6)
	assert.Equal(t, 0, AvailableCount(caps))
}

func TestRegistryIsImmutable(t *testing.T) {
	features := []Feature{{ID: "x", RequiredAnchors: []string{"a"}}}
	reg, err := NewRegistry("1", features)
	require.NoError(t, err)

	features[0].RequiredAnchors[0] = "mutated"
	reg.Features()[0].RequiredAnchors[0] = "mutated"

	caps := NewResolver(reg).Resolve(anchorSet("a"))
	assert.True(t, caps[0].Available)
	assert.Equal(t, []string{"a"}, caps[0].RequiredAnchors)

	caps[0].RequiredAnchors[0] = "mutated"
	assert.Equal(t, []string{"a"}, reg.Features()[0].RequiredAnchors)
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		features []Feature
		contains string
	}{
		{"no version", "", []Feature{{ID: "a", RequiredAnchors: []string{"x"}}}, "version"},
		{"no features", "1", nil, "at least one"},
		{"empty id", "1", []Feature{{RequiredAnchors: []string{"x"}}}, "id is required"},
		{"duplicate", "1", []Feature{{ID: "a", RequiredAnchors: []string{"x"}}, {ID: "a", RequiredAnchors: []string{"y"}}}, "duplicate"},
		{"no anchors", "1", []Feature{{ID: "a"}}, "non-empty"},
		{"blank anchor", "1", []Feature{{ID: "a", RequiredAnchors: []string{""}}}, "is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.version, tt.features)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRegistry))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseRegistryRejectsUnknownFields(t *testing.T) {
	_, err := ParseRegistry([]byte(`
version: "2"
features:
  - id: a
    requiredAnchor: [x]
`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRegistry))
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "2.0"
features:
  - id: god_mode
    requiredAnchors: [player_health, damage_hook]
`), 0644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2.0", reg.Version())
	assert.Equal(t, []Feature{{ID: "god_mode", RequiredAnchors: []string{"player_health", "damage_hook"}}}, reg.Features())
}

func TestLoadRegistryDefault(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRegistry().Features(), reg.Features())
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
