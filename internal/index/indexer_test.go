package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symbolpack/internal/anchor"
	"github.com/roach88/symbolpack/internal/capability"
	"github.com/roach88/symbolpack/internal/fingerprint"
	"github.com/roach88/symbolpack/internal/ir"
	"github.com/roach88/symbolpack/internal/pack"
	"github.com/roach88/symbolpack/internal/schema"
	"github.com/roach88/symbolpack/internal/store"
	"github.com/roach88/symbolpack/internal/testutil"
)

type fixture struct {
	dir     string
	raw     string
	binary  string
	pack    string
	summary string
	output  string
}

// newFixture emits a real pack and summary for a small export.
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		raw:     testutil.WriteRawSymbols(t, dir, "raw-symbols.json", testutil.CreditsSymbols()...),
		binary:  testutil.WriteBinary(t, dir, "swfoc.exe", []byte("original-binary")),
		pack:    filepath.Join(dir, "symbol-pack.json"),
		summary: filepath.Join(dir, "analysis-summary.json"),
		output:  filepath.Join(dir, "artifact-index.json"),
	}

	assembler := pack.NewAssembler(
		anchor.NewBuilder(anchor.DefaultOptions(), nil),
		capability.NewResolver(capability.DefaultRegistry()),
		pack.DefaultMetadata(),
		testutil.NewFixedClock(testutil.DefaultTime),
		nil,
	)
	_, err := pack.NewEmitter(assembler, fingerprint.NewResolver(nil)).Emit(context.Background(), pack.Request{
		RawSymbolsPath: f.raw,
		BinaryPath:     f.binary,
		AnalysisRunID:  "run-7",
		OutputPack:     f.pack,
		OutputSummary:  f.summary,
	})
	require.NoError(t, err)
	return f
}

func (f fixture) request() Request {
	return Request{
		AnalysisRunID:  "run-7",
		BinaryPath:     f.binary,
		RawSymbolsPath: f.raw,
		SymbolPackPath: f.pack,
		SummaryPath:    f.summary,
		OutputPath:     f.output,
	}
}

func newTestIndexer(resolver *fingerprint.Resolver, opts ...Option) *Indexer {
	if resolver == nil {
		resolver = fingerprint.NewResolver(nil)
	}
	opts = append([]Option{WithClock(testutil.NewFixedClock(testutil.DefaultTime))}, opts...)
	return NewIndexer(resolver, "ghidra", opts...)
}

func sha(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestBuildTrustsPackFingerprint(t *testing.T) {
	f := newFixture(t)
	original, err := fingerprint.Compute(f.binary)
	require.NoError(t, err)

	// The binary changes after the pack was emitted.
	require.NoError(t, os.WriteFile(f.binary, []byte("patched-binary"), 0644))

	resolver := fingerprint.NewResolver(nil)
	idx, err := newTestIndexer(resolver).Build(f.request())
	require.NoError(t, err)

	assert.Equal(t, original, idx.BinaryFingerprint)
	assert.Equal(t, ir.FingerprintFromPack, idx.FingerprintSource)
	assert.Equal(t, 0, resolver.HashCount())
}

func TestBuildTrustsPackWithoutBinary(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.binary))

	idx, err := newTestIndexer(nil).Build(f.request())
	require.NoError(t, err)
	assert.Equal(t, ir.FingerprintFromPack, idx.FingerprintSource)
}

func TestBuildFallsBackWhenPackMissing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.pack))

	idx, err := newTestIndexer(nil).Build(f.request())
	require.NoError(t, err)

	expected, err := fingerprint.Compute(f.binary)
	require.NoError(t, err)
	assert.Equal(t, expected, idx.BinaryFingerprint)
	assert.Equal(t, ir.FingerprintFromBinary, idx.FingerprintSource)
	assert.Nil(t, idx.FileHashes.SymbolPackSha256)
}

func TestBuildFallsBackWhenPackMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":            `{"binaryFingerprint":`,
		"not an object":       `[1, 2, 3]`,
		"fingerprint missing": `{"schemaVersion": "1.0"}`,
		"fingerprint scalar":  `{"binaryFingerprint": "abc"}`,
		"empty field":         `{"binaryFingerprint": {"fingerprintId": "x", "moduleName": "  ", "fileSha256": "y"}}`,
		"non-string field":    `{"binaryFingerprint": {"fingerprintId": "x", "moduleName": "m", "fileSha256": 12}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, os.WriteFile(f.pack, []byte(content), 0644))

			idx, err := newTestIndexer(nil).Build(f.request())
			require.NoError(t, err)
			assert.Equal(t, ir.FingerprintFromBinary, idx.FingerprintSource)
			assert.Equal(t, sha(t, f.binary), idx.BinaryFingerprint.FileSha256)
		})
	}
}

func TestBuildFallbackMissingBinaryFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.pack))
	require.NoError(t, os.Remove(f.binary))

	_, err := newTestIndexer(nil).Build(f.request())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fingerprint.ErrBinaryNotFound))
}

func TestBuildFileHashes(t *testing.T) {
	f := newFixture(t)

	idx, err := newTestIndexer(nil).Build(f.request())
	require.NoError(t, err)

	require.NotNil(t, idx.FileHashes.RawSymbolsSha256)
	require.NotNil(t, idx.FileHashes.SymbolPackSha256)
	require.NotNil(t, idx.FileHashes.AnalysisSummarySha256)
	assert.Equal(t, sha(t, f.raw), *idx.FileHashes.RawSymbolsSha256)
	assert.Equal(t, sha(t, f.pack), *idx.FileHashes.SymbolPackSha256)
	assert.Equal(t, sha(t, f.summary), *idx.FileHashes.AnalysisSummarySha256)

	assert.Nil(t, idx.ArtifactPointers.DecompileArchivePath)
	assert.Nil(t, idx.FileHashes.DecompileArchiveSha256)
}

func TestBuildMissingSummaryIsNull(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.summary))

	idx, err := newTestIndexer(nil).Build(f.request())
	require.NoError(t, err)
	assert.Nil(t, idx.FileHashes.AnalysisSummarySha256)
	assert.Equal(t, ir.NormalizePath(f.summary), idx.ArtifactPointers.AnalysisSummaryPath)
}

func TestBuildDecompileArchive(t *testing.T) {
	f := newFixture(t)
	req := f.request()

	t.Run("present", func(t *testing.T) {
		req.DecompileArchivePath = testutil.WriteFile(t, f.dir, "decompile.zip", []byte("PK\x03\x04"))
		idx, err := newTestIndexer(nil).Build(req)
		require.NoError(t, err)

		require.NotNil(t, idx.ArtifactPointers.DecompileArchivePath)
		assert.Equal(t, ir.NormalizePath(req.DecompileArchivePath), *idx.ArtifactPointers.DecompileArchivePath)
		require.NotNil(t, idx.FileHashes.DecompileArchiveSha256)
		assert.Equal(t, sha(t, req.DecompileArchivePath), *idx.FileHashes.DecompileArchiveSha256)
	})
	t.Run("named but missing", func(t *testing.T) {
		req.DecompileArchivePath = filepath.Join(f.dir, "missing.zip")
		idx, err := newTestIndexer(nil).Build(req)
		require.NoError(t, err)

		require.NotNil(t, idx.ArtifactPointers.DecompileArchivePath)
		assert.Nil(t, idx.FileHashes.DecompileArchiveSha256)
	})
}

func TestBuildClassificationCode(t *testing.T) {
	f := newFixture(t)

	idx, err := newTestIndexer(nil).Build(f.request())
	require.NoError(t, err)
	assert.Equal(t, "GHIDRA_ARTIFACT_INDEX_READY", idx.ClassificationCode)

	req := f.request()
	req.ClassificationCode = "CUSTOM_READY"
	idx, err = newTestIndexer(nil).Build(req)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM_READY", idx.ClassificationCode)
}

func TestBuildRequiresFields(t *testing.T) {
	req := newFixture(t).request()
	req.SummaryPath = ""

	_, err := newTestIndexer(nil).Build(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestWriteIndexDocument(t *testing.T) {
	f := newFixture(t)
	validator, err := schema.New()
	require.NoError(t, err)

	result, err := newTestIndexer(nil, WithValidator(validator)).Write(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, ir.NormalizePath(f.output), result.Path)

	written, err := ir.ReadDocument(f.output)
	require.NoError(t, err)
	obj := written.(map[string]any)
	assert.Equal(t, "2024-05-01T12:00:00Z", obj["generatedAtUtc"])
	assert.Equal(t, "symbol-pack", obj["fingerprintSource"])

	pointers := obj["artifactPointers"].(map[string]any)
	value, present := pointers["decompileArchivePath"]
	assert.True(t, present, "missing optional artifacts are explicit nulls")
	assert.Nil(t, value)
}

func TestWriteRecordsLedger(t *testing.T) {
	ledger, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	f := newFixture(t)
	result, err := newTestIndexer(nil, WithLedger(ledger)).Write(context.Background(), f.request())
	require.NoError(t, err)

	run, err := ledger.ReadRun(context.Background(), "run-7", ir.StageIndex)
	require.NoError(t, err)
	assert.Equal(t, "GHIDRA_ARTIFACT_INDEX_READY", run.OutcomeCode)
	assert.Equal(t, result.Index.BinaryFingerprint.FingerprintID, run.FingerprintID)
	assert.Equal(t, result.Path, run.ArtifactPath)
	assert.NotEmpty(t, run.ContentDigest)
}

func TestPackFingerprint(t *testing.T) {
	f := newFixture(t)

	fp, ok := PackFingerprint(f.pack)
	require.True(t, ok)
	assert.Equal(t, "swfoc.exe", fp.ModuleName)

	_, ok = PackFingerprint(filepath.Join(f.dir, "absent.json"))
	assert.False(t, ok)
}
