package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/symbolpack/internal/ir"
)

const selectRunColumns = `
	SELECT seq, analysis_run_id, stage, fingerprint_id, file_sha256,
	       content_digest, outcome_code, artifact_path, recorded_at
	FROM runs
`

// ReadRun retrieves the ledger row for one run and stage.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, analysisRunID string, stage ir.Stage) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRunColumns+`
		WHERE analysis_run_id = ? AND stage = ?
	`, analysisRunID, string(stage))

	run, err := scanRun(row)
	if err != nil {
		return ir.RunRecord{}, err
	}
	return run, nil
}

// ListRuns returns every ledger row ordered by seq.
func (s *Store) ListRuns(ctx context.Context) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRunColumns+`
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

// ListRunsByFingerprint returns the ledger rows for one binary fingerprint
// ordered by seq.
func (s *Store) ListRunsByFingerprint(ctx context.Context, fingerprintID string) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRunColumns+`
		WHERE fingerprint_id = ?
		ORDER BY seq ASC
	`, fingerprintID)
	if err != nil {
		return nil, fmt.Errorf("query runs by fingerprint: %w", err)
	}
	return collectRuns(rows)
}

func collectRuns(rows *sql.Rows) ([]ir.RunRecord, error) {
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (ir.RunRecord, error) {
	var run ir.RunRecord
	var stage string
	if err := sc.Scan(
		&run.Seq, &run.AnalysisRunID, &stage, &run.FingerprintID, &run.FileSha256,
		&run.ContentDigest, &run.OutcomeCode, &run.ArtifactPath, &run.RecordedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.RunRecord{}, err
		}
		return ir.RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	run.Stage = ir.Stage(stage)
	return run, nil
}
