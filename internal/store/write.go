package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/symbolpack/internal/ir"
)

// ErrInvalidRun is returned when a run record is missing required fields.
var ErrInvalidRun = errors.New("invalid run record")

// RecordRun inserts or updates the ledger row for (AnalysisRunID, Stage).
// Uses ON CONFLICT DO UPDATE so re-running a stage overwrites its outcome;
// the row keeps the seq it was first assigned.
func (s *Store) RecordRun(ctx context.Context, run ir.RunRecord) error {
	if err := validateRun(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(analysis_run_id, stage, fingerprint_id, file_sha256, content_digest, outcome_code, artifact_path, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(analysis_run_id, stage) DO UPDATE SET
			fingerprint_id = excluded.fingerprint_id,
			file_sha256 = excluded.file_sha256,
			content_digest = excluded.content_digest,
			outcome_code = excluded.outcome_code,
			artifact_path = excluded.artifact_path,
			recorded_at = excluded.recorded_at
	`,
		run.AnalysisRunID,
		string(run.Stage),
		run.FingerprintID,
		run.FileSha256,
		run.ContentDigest,
		run.OutcomeCode,
		run.ArtifactPath,
		run.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

func validateRun(run ir.RunRecord) error {
	if run.AnalysisRunID == "" {
		return fmt.Errorf("%w: analysis run id is required", ErrInvalidRun)
	}
	if !run.Stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidRun, run.Stage)
	}
	if run.OutcomeCode == "" {
		return fmt.Errorf("%w: outcome code is required", ErrInvalidRun)
	}
	return nil
}
