package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/symbolpack/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the pack's anchor ids to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Anchors  []string // Anchor ids in the pack, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nAnchors (%d):\n", len(e.Anchors))
	for _, id := range e.Anchors {
		fmt.Fprintf(&buf, "  %s\n", id)
	}
	return buf.String()
}

func anchorIDs(p *ir.SymbolPack) []string {
	ids := make([]string, len(p.Anchors))
	for i, a := range p.Anchors {
		ids[i] = a.ID
	}
	return ids
}

func findAnchor(p *ir.SymbolPack, id string) (ir.Anchor, bool) {
	for _, a := range p.Anchors {
		if a.ID == id {
			return a, true
		}
	}
	return ir.Anchor{}, false
}

// assertAnchorPresent checks that the anchor exists and, when an address
// is given, that it resolved to that address.
func assertAnchorPresent(p *ir.SymbolPack, assertion Assertion) error {
	a, ok := findAnchor(p, assertion.ID)
	if !ok {
		return &AssertionError{
			Type:     AssertAnchorPresent,
			Expected: fmt.Sprintf("anchor %s", assertion.ID),
			Actual:   "not found in pack",
			Anchors:  anchorIDs(p),
		}
	}
	if assertion.Address != "" && a.Address != assertion.Address {
		return &AssertionError{
			Type:     AssertAnchorPresent,
			Expected: fmt.Sprintf("anchor %s at %s", assertion.ID, assertion.Address),
			Actual:   fmt.Sprintf("anchor %s at %s", a.ID, a.Address),
			Anchors:  anchorIDs(p),
		}
	}
	return nil
}

func assertAnchorAbsent(p *ir.SymbolPack, assertion Assertion) error {
	if a, ok := findAnchor(p, assertion.ID); ok {
		return &AssertionError{
			Type:     AssertAnchorAbsent,
			Expected: fmt.Sprintf("no anchor %s", assertion.ID),
			Actual:   fmt.Sprintf("anchor %s at %s", a.ID, a.Address),
			Anchors:  anchorIDs(p),
		}
	}
	return nil
}

func assertAnchorCount(p *ir.SymbolPack, assertion Assertion) error {
	if len(p.Anchors) != *assertion.Count {
		return &AssertionError{
			Type:     AssertAnchorCount,
			Expected: fmt.Sprintf("%d anchors", *assertion.Count),
			Actual:   fmt.Sprintf("%d anchors", len(p.Anchors)),
			Anchors:  anchorIDs(p),
		}
	}
	return nil
}

func assertCapability(p *ir.SymbolPack, assertion Assertion) error {
	for _, c := range p.Capabilities {
		if c.FeatureID != assertion.Feature {
			continue
		}
		if c.Available != *assertion.Available {
			return &AssertionError{
				Type:     AssertCapability,
				Expected: fmt.Sprintf("%s available=%t", assertion.Feature, *assertion.Available),
				Actual:   fmt.Sprintf("%s available=%t (requires %s)", c.FeatureID, c.Available, strings.Join(c.RequiredAnchors, ", ")),
				Anchors:  anchorIDs(p),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertCapability,
		Expected: fmt.Sprintf("feature %s in registry", assertion.Feature),
		Actual:   "feature not found",
		Anchors:  anchorIDs(p),
	}
}

// EvaluateAssertions runs every assertion against the pack and returns the
// failure messages in assertion order.
func EvaluateAssertions(p *ir.SymbolPack, assertions []Assertion) []string {
	var failures []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertAnchorPresent:
			err = assertAnchorPresent(p, assertion)
		case AssertAnchorAbsent:
			err = assertAnchorAbsent(p, assertion)
		case AssertAnchorCount:
			err = assertAnchorCount(p, assertion)
		case AssertCapability:
			err = assertCapability(p, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}
