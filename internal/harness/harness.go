package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/symbolpack/internal/anchor"
	"github.com/roach88/symbolpack/internal/capability"
	"github.com/roach88/symbolpack/internal/determinism"
	"github.com/roach88/symbolpack/internal/fingerprint"
	"github.com/roach88/symbolpack/internal/ir"
	"github.com/roach88/symbolpack/internal/pack"
	"github.com/roach88/symbolpack/internal/symbols"
	"github.com/roach88/symbolpack/internal/testutil"
)

// Harness is the scenario execution engine.
// It assembles packs with a deterministic clock and run id.
type Harness struct {
	registry *capability.Registry
	anchors  anchor.Options
	meta     pack.Metadata
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithRegistry sets the capability registry. The default is the embedded
// registry.
func WithRegistry(r *capability.Registry) Option {
	return func(h *Harness) { h.registry = r }
}

// WithAnchorOptions sets the canonicalizer options.
func WithAnchorOptions(opts anchor.Options) Option {
	return func(h *Harness) { h.anchors = opts }
}

// WithMetadata sets the pack build metadata.
func WithMetadata(meta pack.Metadata) Option {
	return func(h *Harness) { h.meta = meta }
}

// WithLogger sets the harness logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		registry: capability.DefaultRegistry(),
		anchors:  anchor.DefaultOptions(),
		meta:     pack.DefaultMetadata(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// Run executes a scenario with the default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// permutation is one ordering of a scenario's symbols.
type permutation struct {
	name string
	doc  *symbols.Document
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Assemble the pack from the symbols in file order
// 2. Assemble again for the reversed order and every rotation
// 3. Record any permutation whose stable pack differs
// 4. Evaluate assertions against the file-order pack
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	doc, err := exportDocument(scenario.Symbols)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	fp, err := scenarioFingerprint(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Pack = h.assemble(scenario, fp, doc)
	result.Permutations = 1
	result.Snapshot, err = ir.StableCanonical(result.Pack)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	for _, perm := range permutations(doc) {
		result.Permutations++
		snapshot, err := ir.StableCanonical(h.assemble(scenario, fp, perm.doc))
		if err != nil {
			return nil, fmt.Errorf("scenario %s (%s): %w", scenario.Name, perm.name, err)
		}
		if bytes.Equal(snapshot, result.Snapshot) {
			continue
		}
		paths, err := diffSnapshots(result.Snapshot, snapshot)
		if err != nil {
			return nil, fmt.Errorf("scenario %s (%s): %w", scenario.Name, perm.name, err)
		}
		result.AddError(fmt.Sprintf("%s input order changed the pack at %s", perm.name, strings.Join(paths, ", ")))
	}

	for _, msg := range EvaluateAssertions(result.Pack, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario executed",
		"scenario", scenario.Name,
		"permutations", result.Permutations,
		"anchors", len(result.Pack.Anchors),
		"pass", result.Pass)
	return result, nil
}

func (h *Harness) assemble(scenario *Scenario, fp ir.BinaryFingerprint, doc *symbols.Document) *ir.SymbolPack {
	assembler := pack.NewAssembler(
		anchor.NewBuilder(h.anchors, h.logger),
		capability.NewResolver(h.registry),
		h.meta,
		testutil.NewFixedClock(testutil.DefaultTime),
		h.logger,
	)
	symbolPack, _ := assembler.Assemble(pack.Input{
		AnalysisRunID: "scenario-" + scenario.Name,
		Fingerprint:   fp,
		Symbols:       doc.Ingest(),
	})
	return symbolPack
}

// exportDocument turns scenario symbols into an export document.
func exportDocument(entries []map[string]any) (*symbols.Document, error) {
	raw := make([]json.RawMessage, 0, len(entries))
	for i, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("symbols[%d]: %w", i, err)
		}
		raw = append(raw, data)
	}
	return &symbols.Document{Fields: map[string]json.RawMessage{}, Symbols: raw}, nil
}

// scenarioFingerprint fingerprints the scenario's stand-in binary.
func scenarioFingerprint(scenario *Scenario) (ir.BinaryFingerprint, error) {
	digest, err := fingerprint.HashReader(strings.NewReader(scenario.Binary))
	if err != nil {
		return ir.BinaryFingerprint{}, err
	}
	return fingerprint.New(scenario.Module, digest), nil
}

// permutations returns the reversed order and every non-identity rotation.
// Lists of fewer than two entries have no other ordering.
func permutations(doc *symbols.Document) []permutation {
	n := len(doc.Symbols)
	if n < 2 {
		return nil
	}
	perms := []permutation{{name: "reversed", doc: doc.Reversed()}}
	for i := 1; i < n; i++ {
		perms = append(perms, permutation{name: fmt.Sprintf("rotated(%d)", i), doc: doc.Rotated(i)})
	}
	return perms
}

func diffSnapshots(a, b []byte) ([]string, error) {
	left, err := ir.DecodeGeneric(a)
	if err != nil {
		return nil, err
	}
	right, err := ir.DecodeGeneric(b)
	if err != nil {
		return nil, err
	}
	return determinism.Diff(left, right), nil
}
