// Package index builds the artifact manifest of an analysis run.
//
// Fingerprint policy: when the symbol pack exists and carries a well-formed
// binaryFingerprint, that fingerprint is used verbatim, even if the binary
// on disk has changed since. This keeps the index and the pack in agreement
// and avoids re-hashing large binaries. Only a missing or malformed pack
// makes the indexer hash the binary itself.
package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/symbolpack/internal/fingerprint"
	"github.com/roach88/symbolpack/internal/ir"
	"github.com/roach88/symbolpack/internal/pack"
	"github.com/roach88/symbolpack/internal/schema"
)

// ErrInvalidRequest is returned when a required request field is empty.
var ErrInvalidRequest = errors.New("invalid index request")

// Request names the artifacts of one run and the index output path.
type Request struct {
	AnalysisRunID        string
	BinaryPath           string
	RawSymbolsPath       string
	SymbolPackPath       string
	SummaryPath          string
	OutputPath           string
	DecompileArchivePath string // optional
	ClassificationCode   string // optional; defaults to <ANALYZER>_ARTIFACT_INDEX_READY
}

func (r Request) validate() error {
	required := []struct {
		name, value string
	}{
		{"analysis run id", r.AnalysisRunID},
		{"binary path", r.BinaryPath},
		{"raw symbols path", r.RawSymbolsPath},
		{"symbol pack path", r.SymbolPackPath},
		{"summary path", r.SummaryPath},
		{"output path", r.OutputPath},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field.name)
		}
	}
	return nil
}

// Result describes a written index.
type Result struct {
	Index *ir.ArtifactIndex
	Path  string
}

// Indexer builds and writes artifact indexes.
type Indexer struct {
	fingerprints *fingerprint.Resolver
	analyzer     string
	validator    pack.Validator
	ledger       pack.Ledger
	clock        pack.Clock
	logger       *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithValidator checks the index before it is written.
func WithValidator(v pack.Validator) Option {
	return func(x *Indexer) { x.validator = v }
}

// WithLedger records every written index.
func WithLedger(l pack.Ledger) Option {
	return func(x *Indexer) { x.ledger = l }
}

// WithClock sets the clock used for generatedAtUtc.
func WithClock(c pack.Clock) Option {
	return func(x *Indexer) { x.clock = c }
}

// WithLogger sets the indexer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(x *Indexer) { x.logger = l }
}

// NewIndexer creates an Indexer. analyzer prefixes the default
// classification code.
func NewIndexer(fingerprints *fingerprint.Resolver, analyzer string, opts ...Option) *Indexer {
	x := &Indexer{fingerprints: fingerprints, analyzer: analyzer}
	for _, opt := range opts {
		opt(x)
	}
	if x.clock == nil {
		x.clock = pack.SystemClock{}
	}
	if x.logger == nil {
		x.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return x
}

// Build assembles the index without writing it.
func (x *Indexer) Build(req Request) (*ir.ArtifactIndex, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	rawPath := ir.NormalizePath(req.RawSymbolsPath)
	packPath := ir.NormalizePath(req.SymbolPackPath)
	summaryPath := ir.NormalizePath(req.SummaryPath)

	fp, source, err := x.resolveFingerprint(packPath, ir.NormalizePath(req.BinaryPath))
	if err != nil {
		return nil, err
	}

	pointers := ir.IndexPointers{
		RawSymbolsPath:      rawPath,
		SymbolPackPath:      packPath,
		AnalysisSummaryPath: summaryPath,
	}
	var hashes ir.FileHashes
	if hashes.RawSymbolsSha256, err = hashIfExists(rawPath); err != nil {
		return nil, err
	}
	if hashes.SymbolPackSha256, err = hashIfExists(packPath); err != nil {
		return nil, err
	}
	if hashes.AnalysisSummarySha256, err = hashIfExists(summaryPath); err != nil {
		return nil, err
	}
	if req.DecompileArchivePath != "" {
		archivePath := ir.NormalizePath(req.DecompileArchivePath)
		pointers.DecompileArchivePath = &archivePath
		if hashes.DecompileArchiveSha256, err = hashIfExists(archivePath); err != nil {
			return nil, err
		}
	}

	code := req.ClassificationCode
	if code == "" {
		code = ir.ClassificationCode(x.analyzer, ir.SuffixArtifactIndexReady)
	}

	return &ir.ArtifactIndex{
		SchemaVersion:      ir.SchemaVersion,
		AnalysisRunID:      req.AnalysisRunID,
		GeneratedAtUtc:     ir.FormatTimestamp(x.clock.Now()),
		ClassificationCode: code,
		BinaryFingerprint:  fp,
		FingerprintSource:  source,
		ArtifactPointers:   pointers,
		FileHashes:         hashes,
	}, nil
}

// Write builds the index and writes it to req.OutputPath.
func (x *Indexer) Write(ctx context.Context, req Request) (*Result, error) {
	idx, err := x.Build(req)
	if err != nil {
		return nil, err
	}
	if x.validator != nil {
		if err := x.validator.Validate(schema.KindIndex, idx); err != nil {
			return nil, err
		}
	}

	outputPath := ir.NormalizePath(req.OutputPath)
	if err := ir.WriteDocument(outputPath, idx); err != nil {
		return nil, err
	}
	x.logger.Info("artifact index emitted",
		"path", outputPath,
		"fingerprint_id", idx.BinaryFingerprint.FingerprintID,
		"fingerprint_source", idx.FingerprintSource)

	if x.ledger != nil {
		err := x.ledger.RecordRun(ctx, ir.RunRecord{
			AnalysisRunID: idx.AnalysisRunID,
			Stage:         ir.StageIndex,
			FingerprintID: idx.BinaryFingerprint.FingerprintID,
			FileSha256:    idx.BinaryFingerprint.FileSha256,
			ContentDigest: packDigest(idx.ArtifactPointers.SymbolPackPath),
			OutcomeCode:   idx.ClassificationCode,
			ArtifactPath:  outputPath,
			RecordedAt:    idx.GeneratedAtUtc,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Result{Index: idx, Path: outputPath}, nil
}

func (x *Indexer) resolveFingerprint(packPath, binaryPath string) (ir.BinaryFingerprint, string, error) {
	if fp, ok := PackFingerprint(packPath); ok {
		x.logger.Debug("fingerprint taken from symbol pack", "pack", packPath, "fingerprint_id", fp.FingerprintID)
		return fp, ir.FingerprintFromPack, nil
	}

	x.logger.Debug("symbol pack fingerprint unavailable, hashing binary", "pack", packPath, "binary", binaryPath)
	fp, err := x.fingerprints.Resolve(binaryPath)
	if err != nil {
		return ir.BinaryFingerprint{}, "", err
	}
	return fp, ir.FingerprintFromBinary, nil
}

// PackFingerprint reads the binaryFingerprint embedded in the pack at
// packPath. It reports false when the file is missing, is not JSON, or
// lacks any of the three fingerprint fields as a non-empty string.
func PackFingerprint(packPath string) (ir.BinaryFingerprint, bool) {
	doc, err := ir.ReadDocument(packPath)
	if err != nil {
		return ir.BinaryFingerprint{}, false
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return ir.BinaryFingerprint{}, false
	}
	raw, ok := obj["binaryFingerprint"].(map[string]any)
	if !ok {
		return ir.BinaryFingerprint{}, false
	}

	field := func(name string) string {
		s, _ := raw[name].(string)
		return strings.TrimSpace(s)
	}
	fp := ir.BinaryFingerprint{
		FingerprintID: field("fingerprintId"),
		ModuleName:    field("moduleName"),
		FileSha256:    field("fileSha256"),
	}
	return fp, fp.Valid()
}

// hashIfExists returns the sha256 of the file at path, or nil when there is
// no such file.
func hashIfExists(path string) (*string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("artifact path is a directory: %s", path)
	}
	digest, err := fingerprint.HashFile(path)
	if err != nil {
		return nil, err
	}
	return &digest, nil
}

// packDigest returns the content digest of the pack at path, or "" when it
// cannot be read.
func packDigest(path string) string {
	doc, err := ir.ReadDocument(path)
	if err != nil {
		return ""
	}
	digest, err := ir.PackDigest(doc)
	if err != nil {
		return ""
	}
	return digest
}
