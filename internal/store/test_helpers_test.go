package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/symbolpack/internal/ir"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record with minimal required fields.
func createTestRun(runID string, stage ir.Stage, fingerprintID string) ir.RunRecord {
	return ir.RunRecord{
		AnalysisRunID: runID,
		Stage:         stage,
		FingerprintID: fingerprintID,
		FileSha256:    "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		OutcomeCode:   "GHIDRA_ARTIFACT_INDEX_READY",
		ArtifactPath:  "/work/out/" + string(stage) + ".json",
		RecordedAt:    "2024-01-01T00:00:00Z",
	}
}
