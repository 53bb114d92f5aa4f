package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a raw symbol export and the
// properties the resulting symbol pack must have.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Module is the binary's file name, recorded as moduleName and on
	// every anchor.
	Module string `yaml:"module"`

	// Binary is the content of the stand-in binary. Its sha256 feeds the
	// fingerprint, so changing it changes fingerprintId.
	Binary string `yaml:"binary,omitempty"`

	// Symbols are raw export entries, exactly as the analyzer would write
	// them. Malformed entries are allowed and exercise skip handling.
	Symbols []map[string]any `yaml:"symbols"`

	// Assertions validate the assembled pack.
	// Supported types: anchor_present, anchor_absent, anchor_count, capability
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of the assembled pack.
type Assertion struct {
	// Type specifies the assertion type:
	// - "anchor_present": anchor ID exists (and has Address, if given)
	// - "anchor_absent": anchor ID does not exist
	// - "anchor_count": the pack has exactly Count anchors
	// - "capability": Feature resolves to Available
	Type string `yaml:"type"`

	// ID is the anchor id (used by anchor_present, anchor_absent).
	ID string `yaml:"id,omitempty"`

	// Address is the expected canonical address (optional for anchor_present).
	Address string `yaml:"address,omitempty"`

	// Count is the expected number of anchors (used by anchor_count).
	Count *int `yaml:"count,omitempty"`

	// Feature is the capability feature id (used by capability).
	Feature string `yaml:"feature,omitempty"`

	// Available is the expected availability (used by capability).
	Available *bool `yaml:"available,omitempty"`
}

// Assertion type constants.
const (
	AssertAnchorPresent = "anchor_present"
	AssertAnchorAbsent  = "anchor_absent"
	AssertAnchorCount   = "anchor_count"
	AssertCapability    = "capability"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Module == "" {
		return fmt.Errorf("module is required")
	}
	if s.Symbols == nil {
		return fmt.Errorf("symbols list is required (use [] for an empty export)")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertAnchorPresent, AssertAnchorAbsent:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
	case AssertAnchorCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for anchor_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for anchor_count", index)
		}
	case AssertCapability:
		if a.Feature == "" {
			return fmt.Errorf("assertions[%d]: feature is required for capability", index)
		}
		if a.Available == nil {
			return fmt.Errorf("assertions[%d]: available is required for capability", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
