// Package determinism proves that pack emission is independent of the
// order of the raw symbol export.
//
// The verifier runs the emitter twice, once over the export as given and
// once over the same export with its symbol list reversed, then compares
// the two packs after stripping the volatile build metadata fields. The
// runs are sequential and write to disjoint paths inside one output
// directory. The report is always written before a mismatch is returned.
package determinism

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/symbolpack/internal/fingerprint"
	"github.com/roach88/symbolpack/internal/ir"
	"github.com/roach88/symbolpack/internal/pack"
	"github.com/roach88/symbolpack/internal/schema"
	"github.com/roach88/symbolpack/internal/symbols"
)

// Output file names inside the verifier's output directory.
const (
	ReversedRawSymbolsFile = "raw-symbols.reversed.json"
	FirstPackFile          = "symbol-pack.first.json"
	FirstSummaryFile       = "analysis-summary.first.json"
	SecondPackFile         = "symbol-pack.second.json"
	SecondSummaryFile      = "analysis-summary.second.json"
	ReportFile             = "determinism-report.json"
)

// Run id suffixes of the two emissions.
const (
	firstRunSuffix  = "-a"
	secondRunSuffix = "-b"
)

// ErrInvalidRequest is returned when a required request field is empty.
var ErrInvalidRequest = errors.New("invalid determinism request")

// MismatchError is returned when the two packs differ. The report has
// already been written when it is returned.
type MismatchError struct {
	Code       string
	Report     *ir.DeterminismReport
	ReportPath string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("symbol-pack determinism check failed (classification_code=%s, differences=%d)",
		e.Code, len(e.Report.Differences))
}

// Request names the inputs and the output directory of one check.
type Request struct {
	RawSymbolsPath    string
	BinaryPath        string
	AnalysisRunIDBase string
	OutputDir         string
}

func (r Request) validate() error {
	required := []struct {
		name, value string
	}{
		{"raw symbols path", r.RawSymbolsPath},
		{"binary path", r.BinaryPath},
		{"analysis run id base", r.AnalysisRunIDBase},
		{"output directory", r.OutputDir},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field.name)
		}
	}
	return nil
}

// Result describes a completed check.
type Result struct {
	Report          *ir.DeterminismReport
	ReportPath      string
	ReversedRawPath string
	First           *pack.Result
	Second          *pack.Result
}

// Emitter produces one pack and summary. *pack.Emitter implements it.
type Emitter interface {
	Emit(ctx context.Context, req pack.Request) (*pack.Result, error)
}

// Verifier runs determinism checks.
type Verifier struct {
	emitter   Emitter
	analyzer  string
	validator pack.Validator
	ledger    pack.Ledger
	clock     pack.Clock
	logger    *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithValidator checks the report before it is written.
func WithValidator(v pack.Validator) Option {
	return func(vr *Verifier) { vr.validator = v }
}

// WithLedger records every verdict.
func WithLedger(l pack.Ledger) Option {
	return func(vr *Verifier) { vr.ledger = l }
}

// WithClock sets the clock used for ledger timestamps.
func WithClock(c pack.Clock) Option {
	return func(vr *Verifier) { vr.clock = c }
}

// WithLogger sets the verifier's logger.
func WithLogger(l *slog.Logger) Option {
	return func(vr *Verifier) { vr.logger = l }
}

// NewVerifier creates a Verifier that emits through emitter. analyzer
// prefixes the report's reason code.
func NewVerifier(emitter Emitter, analyzer string, opts ...Option) *Verifier {
	v := &Verifier{emitter: emitter, analyzer: analyzer}
	for _, opt := range opts {
		opt(v)
	}
	if v.clock == nil {
		v.clock = pack.SystemClock{}
	}
	if v.logger == nil {
		v.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return v
}

// Verify runs both emissions and compares the packs. On mismatch the
// returned error is a *MismatchError and the result is still populated.
func (v *Verifier) Verify(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	rawPath := ir.NormalizePath(req.RawSymbolsPath)
	binaryPath := ir.NormalizePath(req.BinaryPath)
	outputDir := ir.NormalizePath(req.OutputDir)

	doc, err := symbols.ReadDocument(rawPath)
	if err != nil {
		return nil, err
	}
	if err := requireFile(binaryPath); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	reversedPath := filepath.ToSlash(filepath.Join(outputDir, ReversedRawSymbolsFile))
	if err := doc.Reversed().Write(reversedPath); err != nil {
		return nil, err
	}

	first, err := v.emitter.Emit(ctx, pack.Request{
		RawSymbolsPath: rawPath,
		BinaryPath:     binaryPath,
		AnalysisRunID:  req.AnalysisRunIDBase + firstRunSuffix,
		OutputPack:     filepath.Join(outputDir, FirstPackFile),
		OutputSummary:  filepath.Join(outputDir, FirstSummaryFile),
	})
	if err != nil {
		return nil, fmt.Errorf("first emission: %w", err)
	}
	second, err := v.emitter.Emit(ctx, pack.Request{
		RawSymbolsPath: reversedPath,
		BinaryPath:     binaryPath,
		AnalysisRunID:  req.AnalysisRunIDBase + secondRunSuffix,
		OutputPack:     filepath.Join(outputDir, SecondPackFile),
		OutputSummary:  filepath.Join(outputDir, SecondSummaryFile),
	})
	if err != nil {
		return nil, fmt.Errorf("second emission: %w", err)
	}

	report, err := Compare(first.PackPath, second.PackPath)
	if err != nil {
		return nil, err
	}
	if report.Deterministic {
		report.ReasonCode = ir.ClassificationCode(v.analyzer, ir.SuffixDeterminismPass)
	} else {
		report.ReasonCode = ir.ClassificationCode(v.analyzer, ir.SuffixDeterminismMismatch)
	}

	if v.validator != nil {
		if err := v.validator.Validate(schema.KindReport, report); err != nil {
			return nil, err
		}
	}
	reportPath := filepath.ToSlash(filepath.Join(outputDir, ReportFile))
	if err := ir.WriteDocument(reportPath, report); err != nil {
		return nil, err
	}
	v.logger.Info("determinism report written",
		"path", reportPath,
		"deterministic", report.Deterministic,
		"reason_code", report.ReasonCode,
		"differences", len(report.Differences))

	if v.ledger != nil {
		fp := first.Pack.BinaryFingerprint
		err := v.ledger.RecordRun(ctx, ir.RunRecord{
			AnalysisRunID: req.AnalysisRunIDBase,
			Stage:         ir.StageDeterminism,
			FingerprintID: fp.FingerprintID,
			FileSha256:    fp.FileSha256,
			ContentDigest: report.FirstPackDigest,
			OutcomeCode:   report.ReasonCode,
			ArtifactPath:  reportPath,
			RecordedAt:    ir.FormatTimestamp(v.clock.Now()),
		})
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Report:          report,
		ReportPath:      reportPath,
		ReversedRawPath: reversedPath,
		First:           first,
		Second:          second,
	}
	if !report.Deterministic {
		return result, &MismatchError{Code: report.ReasonCode, Report: report, ReportPath: reportPath}
	}
	return result, nil
}

// Compare loads two pack files and compares them modulo volatile fields.
// The returned report has no reason code; callers classify it.
func Compare(firstPath, secondPath string) (*ir.DeterminismReport, error) {
	first, err := ir.ReadDocument(firstPath)
	if err != nil {
		return nil, fmt.Errorf("read first pack: %w", err)
	}
	second, err := ir.ReadDocument(secondPath)
	if err != nil {
		return nil, fmt.Errorf("read second pack: %w", err)
	}
	return ComparePacks(first, second, ir.NormalizePath(firstPath), ir.NormalizePath(secondPath))
}

// ComparePacks compares two generic pack documents modulo volatile fields.
func ComparePacks(first, second any, firstPath, secondPath string) (*ir.DeterminismReport, error) {
	firstStable, err := ir.StableCanonical(first)
	if err != nil {
		return nil, fmt.Errorf("canonicalize first pack: %w", err)
	}
	secondStable, err := ir.StableCanonical(second)
	if err != nil {
		return nil, fmt.Errorf("canonicalize second pack: %w", err)
	}
	firstDigest, err := ir.PackDigest(first)
	if err != nil {
		return nil, err
	}
	secondDigest, err := ir.PackDigest(second)
	if err != nil {
		return nil, err
	}

	differences := []string{}
	deterministic := bytes.Equal(firstStable, secondStable)
	if !deterministic {
		firstGeneric, err := ir.ToGeneric(first)
		if err != nil {
			return nil, err
		}
		secondGeneric, err := ir.ToGeneric(second)
		if err != nil {
			return nil, err
		}
		differences = Diff(ir.StripVolatile(firstGeneric), ir.StripVolatile(secondGeneric))
	}

	return &ir.DeterminismReport{
		Deterministic:    deterministic,
		FirstPackPath:    firstPath,
		SecondPackPath:   secondPath,
		FirstPackDigest:  firstDigest,
		SecondPackDigest: secondDigest,
		Differences:      differences,
	}, nil
}

// requireFile fails with fingerprint.ErrBinaryNotFound when path is absent.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", fingerprint.ErrBinaryNotFound, path)
		}
		return fmt.Errorf("stat binary: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("binary path is a directory: %s", path)
	}
	return nil
}
