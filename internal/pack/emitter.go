package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/symbolpack/internal/fingerprint"
	"github.com/roach88/symbolpack/internal/ir"
	"github.com/roach88/symbolpack/internal/schema"
	"github.com/roach88/symbolpack/internal/symbols"
)

// ErrInvalidRequest is returned when a required request field is empty.
var ErrInvalidRequest = errors.New("invalid emit request")

// Validator checks a document before it is written.
type Validator interface {
	Validate(kind schema.Kind, doc any) error
}

// Ledger records stage outcomes.
type Ledger interface {
	RecordRun(ctx context.Context, run ir.RunRecord) error
}

// Request names the inputs and outputs of one emission.
type Request struct {
	RawSymbolsPath       string
	BinaryPath           string
	AnalysisRunID        string
	OutputPack           string
	OutputSummary        string
	DecompileArchivePath string // optional
}

func (r Request) validate() error {
	required := []struct {
		name, value string
	}{
		{"raw symbols path", r.RawSymbolsPath},
		{"binary path", r.BinaryPath},
		{"analysis run id", r.AnalysisRunID},
		{"output pack path", r.OutputPack},
		{"output summary path", r.OutputSummary},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field.name)
		}
	}
	return nil
}

// Result describes what an emission wrote.
type Result struct {
	Pack        *ir.SymbolPack
	Summary     *ir.AnalysisSummary
	PackPath    string
	SummaryPath string
	// Digest is the pack's content digest modulo volatile fields.
	Digest string
}

// Emitter runs ingestion, assembly and document output for one run.
type Emitter struct {
	assembler    *Assembler
	fingerprints *fingerprint.Resolver
	validator    Validator
	ledger       Ledger
	logger       *slog.Logger
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithValidator checks both documents before they are written.
func WithValidator(v Validator) EmitterOption {
	return func(e *Emitter) { e.validator = v }
}

// WithLedger records every successful emission.
func WithLedger(l Ledger) EmitterOption {
	return func(e *Emitter) { e.ledger = l }
}

// WithLogger sets the emitter's logger.
func WithLogger(l *slog.Logger) EmitterOption {
	return func(e *Emitter) { e.logger = l }
}

// NewEmitter creates an Emitter. Sharing one fingerprint resolver between
// emitters lets them reuse a binary's hash.
func NewEmitter(assembler *Assembler, fingerprints *fingerprint.Resolver, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		assembler:    assembler,
		fingerprints: fingerprints,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Emit loads the raw export, fingerprints the binary, and writes the pack
// and summary. Missing inputs abort the run before any output is written.
func (e *Emitter) Emit(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	rawPath := ir.NormalizePath(req.RawSymbolsPath)
	binaryPath := ir.NormalizePath(req.BinaryPath)
	packPath := ir.NormalizePath(req.OutputPack)
	summaryPath := ir.NormalizePath(req.OutputSummary)
	archivePath := ""
	if req.DecompileArchivePath != "" {
		archivePath = ir.NormalizePath(req.DecompileArchivePath)
	}

	ingested, err := symbols.LoadFile(rawPath)
	if err != nil {
		return nil, err
	}
	e.logger.Info("raw symbols ingested",
		"path", rawPath,
		"symbols", len(ingested.Symbols),
		"skipped", len(ingested.Skipped))
	for _, skipped := range ingested.Skipped {
		e.logger.Debug("raw symbol skipped", "index", skipped.Index, "reason", skipped.Reason)
	}

	fp, err := e.fingerprints.Resolve(binaryPath)
	if err != nil {
		return nil, err
	}
	e.logger.Info("binary fingerprinted", "path", binaryPath, "fingerprint_id", fp.FingerprintID)

	symbolPack, summary := e.assembler.Assemble(Input{
		AnalysisRunID:        req.AnalysisRunID,
		Fingerprint:          fp,
		Symbols:              ingested,
		BinaryPath:           binaryPath,
		RawSymbolsPath:       rawPath,
		SymbolPackPath:       packPath,
		DecompileArchivePath: archivePath,
	})

	if e.validator != nil {
		if err := e.validator.Validate(schema.KindPack, symbolPack); err != nil {
			return nil, err
		}
		if err := e.validator.Validate(schema.KindSummary, summary); err != nil {
			return nil, err
		}
	}

	digest, err := ir.PackDigest(symbolPack)
	if err != nil {
		return nil, err
	}

	if err := ir.WriteDocument(packPath, symbolPack); err != nil {
		return nil, err
	}
	if err := ir.WriteDocument(summaryPath, summary); err != nil {
		return nil, err
	}
	e.logger.Info("symbol pack written",
		"pack", packPath,
		"summary", summaryPath,
		"anchors", len(symbolPack.Anchors),
		"capabilities_available", summary.CoverageStats.AvailableCapabilityCount)

	if e.ledger != nil {
		err := e.ledger.RecordRun(ctx, ir.RunRecord{
			AnalysisRunID: req.AnalysisRunID,
			Stage:         ir.StageEmit,
			FingerprintID: fp.FingerprintID,
			FileSha256:    fp.FileSha256,
			ContentDigest: digest,
			OutcomeCode:   ir.ClassificationCode(e.assembler.meta.Analyzer, ir.SuffixPackEmitted),
			ArtifactPath:  packPath,
			RecordedAt:    ir.FormatTimestamp(e.assembler.clock.Now()),
		})
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Pack:        symbolPack,
		Summary:     summary,
		PackPath:    packPath,
		SummaryPath: summaryPath,
		Digest:      digest,
	}, nil
}
