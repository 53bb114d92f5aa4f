// Package pack assembles and writes the symbol pack and analysis summary.
//
// Assembler is the pure part: ingested symbols, a fingerprint and a run id
// in, two documents out. Emitter adds file I/O around it: every required
// input is resolved before anything is written, and documents can be
// schema-checked and recorded in the run ledger.
package pack

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/symbolpack/internal/anchor"
	"github.com/roach88/symbolpack/internal/capability"
	"github.com/roach88/symbolpack/internal/ir"
	"github.com/roach88/symbolpack/internal/symbols"
)

// Build metadata defaults.
const (
	DefaultToolchain       = "ghidra-headless+symbolpack-emit"
	DefaultNotes           = "auto-generated by headless reverse-engineering pipeline"
	DefaultAnalyzerVersion = "unknown"
)

// Tool version keys written to the summary besides the analyzer name.
const (
	ToolVersionEmitter  = "emitter"
	ToolVersionRegistry = "capabilityRegistry"
)

// Metadata describes the analyzer and toolchain stamped into documents.
type Metadata struct {
	Analyzer        string
	AnalyzerVersion string
	Toolchain       string
	Notes           string
}

// DefaultMetadata returns the metadata used when nothing is configured.
func DefaultMetadata() Metadata {
	return Metadata{
		Analyzer:        anchor.DefaultAnalyzer,
		AnalyzerVersion: DefaultAnalyzerVersion,
		Toolchain:       DefaultToolchain,
		Notes:           DefaultNotes,
	}
}

// Input is everything one assembly needs. Paths are recorded verbatim, so
// callers pass them already normalized.
type Input struct {
	AnalysisRunID        string
	Fingerprint          ir.BinaryFingerprint
	Symbols              *symbols.IngestResult
	BinaryPath           string
	RawSymbolsPath       string
	SymbolPackPath       string
	DecompileArchivePath string
}

// Assembler builds both documents from ingested symbols.
type Assembler struct {
	anchors      *anchor.Builder
	capabilities *capability.Resolver
	meta         Metadata
	clock        Clock
	logger       *slog.Logger
}

// NewAssembler creates an Assembler. A nil clock uses SystemClock and a nil
// logger discards output.
func NewAssembler(anchors *anchor.Builder, capabilities *capability.Resolver, meta Metadata, clock Clock, logger *slog.Logger) *Assembler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Assembler{
		anchors:      anchors,
		capabilities: capabilities,
		meta:         meta,
		clock:        clock,
		logger:       logger,
	}
}

// Metadata returns the assembler's metadata.
func (a *Assembler) Metadata() Metadata {
	return a.meta
}

// Assemble produces the symbol pack and its summary.
func (a *Assembler) Assemble(in Input) (*ir.SymbolPack, *ir.AnalysisSummary) {
	ingested := in.Symbols
	if ingested == nil {
		ingested = &symbols.IngestResult{}
	}

	anchors := a.anchors.Build(in.Fingerprint.ModuleName, ingested.Symbols)
	capabilities := a.capabilities.Resolve(anchor.IDs(anchors))
	available := capability.AvailableCount(capabilities)

	a.logger.Debug("pack assembled",
		"analysis_run_id", in.AnalysisRunID,
		"symbols", len(ingested.Symbols),
		"skipped", len(ingested.Skipped),
		"anchors", len(anchors),
		"capabilities_available", available,
		"capabilities_total", len(capabilities),
	)

	symbolPack := &ir.SymbolPack{
		SchemaVersion:     ir.SchemaVersion,
		BinaryFingerprint: in.Fingerprint,
		BuildMetadata: ir.BuildMetadata{
			AnalysisRunID:  in.AnalysisRunID,
			GeneratedAtUtc: ir.FormatTimestamp(a.clock.Now()),
			Toolchain:      a.meta.Toolchain,
			Notes:          a.meta.Notes,
		},
		Anchors:      anchors,
		Capabilities: capabilities,
	}

	summary := &ir.AnalysisSummary{
		SchemaVersion: ir.SchemaVersion,
		AnalysisRunID: in.AnalysisRunID,
		BinaryPath:    in.BinaryPath,
		ToolVersions: map[string]string{
			a.meta.Analyzer:     a.meta.AnalyzerVersion,
			ToolVersionEmitter:  ir.EmitterVersion,
			ToolVersionRegistry: a.capabilities.Registry().Version(),
		},
		CoverageStats: ir.CoverageStats{
			RawSymbolCount:           len(ingested.Symbols),
			SkippedSymbolCount:       len(ingested.Skipped),
			AnchorCount:              len(anchors),
			AvailableCapabilityCount: available,
		},
		Warnings: Warnings(capabilities),
		ArtifactPointers: ir.SummaryPointers{
			RawSymbolsPath:       in.RawSymbolsPath,
			SymbolPackPath:       in.SymbolPackPath,
			DecompileArchivePath: in.DecompileArchivePath,
		},
	}

	return symbolPack, summary
}

// Warnings returns one warning per unavailable capability, in input order.
func Warnings(capabilities []ir.Capability) []string {
	warnings := []string{}
	for _, c := range capabilities {
		if !c.Available {
			warnings = append(warnings, fmt.Sprintf("capability %s unavailable: missing required anchors", c.FeatureID))
		}
	}
	return warnings
}
