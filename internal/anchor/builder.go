// Package anchor canonicalizes raw symbols into a deterministic anchor set.
//
// Multiple raw symbols may normalize to the same anchor id (name-mangling
// variants, case differences). Exactly one candidate is retained per id,
// chosen by a strict total order over candidates, so the result does not
// depend on input order:
//
//  1. parseable hexadecimal addresses before unparseable ones
//  2. numerically smaller address first
//  3. case-insensitive name ascending
//  4. exact name, then kind, then lowercased address text ascending
//
// Key 4 only matters for candidates that are otherwise identical in every
// emitted field, but it keeps the order strict.
package anchor

import (
	"io"
	"log/slog"
	"math/big"
	"slices"
	"strings"

	"github.com/roach88/symbolpack/internal/ir"
	"github.com/roach88/symbolpack/internal/symbols"
)

// Defaults for anchor fields that are not derived from the raw symbol.
const (
	DefaultConfidence = 0.95
	DefaultValueType  = "Int32"
	DefaultAnalyzer   = "ghidra"
)

// Options configures anchor emission.
type Options struct {
	// Analyzer prefixes the source provenance tag ("<analyzer>:<kind>").
	Analyzer string
	// Confidence is assigned to every anchor.
	Confidence float64
	// ValueType is assigned to every anchor.
	ValueType string
}

// DefaultOptions returns the standard emission options.
func DefaultOptions() Options {
	return Options{
		Analyzer:   DefaultAnalyzer,
		Confidence: DefaultConfidence,
		ValueType:  DefaultValueType,
	}
}

// Builder turns raw symbols into anchors.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(opts Options, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{opts: opts, logger: logger}
}

// candidate is a raw symbol with its precomputed rank keys.
type candidate struct {
	symbol    symbols.RawSymbol
	parsed    *big.Int
	lowerName string
	lowerAddr string
}

func newCandidate(sym symbols.RawSymbol) candidate {
	parsed, _ := ParseAddress(sym.Address)
	return candidate{
		symbol:    sym,
		parsed:    parsed,
		lowerName: lower(sym.Name),
		lowerAddr: strings.ToLower(strings.TrimSpace(sym.Address)),
	}
}

// compareCandidates is the strict total order; the smaller candidate wins.
func compareCandidates(a, b candidate) int {
	switch {
	case a.parsed != nil && b.parsed == nil:
		return -1
	case a.parsed == nil && b.parsed != nil:
		return 1
	case a.parsed != nil:
		if c := a.parsed.Cmp(b.parsed); c != 0 {
			return c
		}
	}
	if c := strings.Compare(a.lowerName, b.lowerName); c != 0 {
		return c
	}
	if c := strings.Compare(a.symbol.Name, b.symbol.Name); c != 0 {
		return c
	}
	if c := strings.Compare(a.symbol.Kind, b.symbol.Kind); c != 0 {
		return c
	}
	return strings.Compare(a.lowerAddr, b.lowerAddr)
}

// Build selects one canonical symbol per anchor id and emits anchors sorted
// by id. moduleName is recorded on every anchor. An empty input yields an
// empty, non-nil slice.
func (b *Builder) Build(moduleName string, syms []symbols.RawSymbol) []ir.Anchor {
	chosen := make(map[string]candidate, len(syms))
	conflicts := 0
	dropped := 0

	for _, sym := range syms {
		id := NormalizeID(sym.Name)
		if id == "" {
			dropped++
			continue
		}
		cand := newCandidate(sym)
		current, exists := chosen[id]
		if exists {
			conflicts++
			if compareCandidates(cand, current) >= 0 {
				continue
			}
		}
		chosen[id] = cand
	}

	ids := make([]string, 0, len(chosen))
	for id := range chosen {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	anchors := make([]ir.Anchor, 0, len(ids))
	for _, id := range ids {
		sym := chosen[id].symbol
		anchors = append(anchors, ir.Anchor{
			ID:         id,
			Address:    NormalizeAddress(sym.Address),
			Module:     moduleName,
			Confidence: b.opts.Confidence,
			Source:     b.opts.Analyzer + ":" + sym.Kind,
			ValueType:  b.opts.ValueType,
		})
	}

	b.logger.Debug("anchors built",
		"symbols", len(syms),
		"anchors", len(anchors),
		"conflicts", conflicts,
		"unnamed", dropped)
	return anchors
}

// IDs returns the ids of the given anchors as a set.
func IDs(anchors []ir.Anchor) map[string]struct{} {
	set := make(map[string]struct{}, len(anchors))
	for _, a := range anchors {
		set[a.ID] = struct{}{}
	}
	return set
}
