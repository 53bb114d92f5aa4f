package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/roach88/symbolpack/internal/ir"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing", ir.StageEmit)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	// Should return empty slice, not nil
	if runs == nil {
		t.Error("runs is nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ids := []string{"run-c", "run-a", "run-b"}
	for _, id := range ids {
		if err := s.RecordRun(ctx, createTestRun(id, ir.StageEmit, "fp")); err != nil {
			t.Fatalf("RecordRun() failed: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != len(ids) {
		t.Fatalf("len(runs) = %d, want %d", len(runs), len(ids))
	}
	for i, id := range ids {
		if runs[i].AnalysisRunID != id {
			t.Errorf("runs[%d].AnalysisRunID = %q, want %q", i, runs[i].AnalysisRunID, id)
		}
		if runs[i].Seq != int64(i+1) {
			t.Errorf("runs[%d].Seq = %d, want %d", i, runs[i].Seq, i+1)
		}
	}
}

func TestListRunsByFingerprint(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	records := []ir.RunRecord{
		createTestRun("run-1", ir.StageEmit, "game_aaaaaaaaaaaaaaaa"),
		createTestRun("run-2", ir.StageEmit, "other_bbbbbbbbbbbbbbbb"),
		createTestRun("run-1", ir.StageIndex, "game_aaaaaaaaaaaaaaaa"),
	}
	for _, r := range records {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun() failed: %v", err)
		}
	}

	runs, err := s.ListRunsByFingerprint(ctx, "game_aaaaaaaaaaaaaaaa")
	if err != nil {
		t.Fatalf("ListRunsByFingerprint() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].Stage != ir.StageEmit || runs[1].Stage != ir.StageIndex {
		t.Errorf("stages = [%s %s], want [emit index]", runs[0].Stage, runs[1].Stage)
	}

	none, err := s.ListRunsByFingerprint(ctx, "unknown")
	if err != nil {
		t.Fatalf("ListRunsByFingerprint() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("len(none) = %d, want 0", len(none))
	}
}
