package capability

import (
	"slices"

	"github.com/roach88/symbolpack/internal/ir"
)

// Resolver computes capability availability from a fixed registry.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a Resolver over registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Registry returns the resolver's registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve evaluates every registry entry against anchorIDs. A feature is
// available only if all its required anchors are present. Output follows
// registry order.
func (r *Resolver) Resolve(anchorIDs map[string]struct{}) []ir.Capability {
	capabilities := make([]ir.Capability, 0, len(r.registry.features))
	for _, f := range r.registry.features {
		available := true
		for _, required := range f.RequiredAnchors {
			if _, ok := anchorIDs[required]; !ok {
				available = false
				break
			}
		}

		c := ir.Capability{
			FeatureID:       f.ID,
			Available:       available,
			State:           ir.StateVerified,
			ReasonCode:      ir.ReasonProbePass,
			RequiredAnchors: slices.Clone(f.RequiredAnchors),
		}
		if !available {
			c.State = ir.StateUnavailable
			c.ReasonCode = ir.ReasonRequiredMissing
		}
		capabilities = append(capabilities, c)
	}
	return capabilities
}

// AvailableCount counts available capabilities.
func AvailableCount(capabilities []ir.Capability) int {
	n := 0
	for _, c := range capabilities {
		if c.Available {
			n++
		}
	}
	return n
}
