package ir

// NOTE: These are store-internal types, not part of any produced document.
// Seq is an auto-increment insertion order, not a content identity.

// Stage names a pipeline stage recorded in the run ledger.
type Stage string

const (
	StageEmit        Stage = "emit"
	StageDeterminism Stage = "determinism"
	StageIndex       Stage = "index"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageEmit, StageDeterminism, StageIndex:
		return true
	}
	return false
}

// RunRecord is one ledger row: the outcome of a stage for an analysis run.
type RunRecord struct {
	Seq           int64  `json:"seq"`
	AnalysisRunID string `json:"analysis_run_id"`
	Stage         Stage  `json:"stage"`
	FingerprintID string `json:"fingerprint_id"`
	FileSha256    string `json:"file_sha256"`
	ContentDigest string `json:"content_digest"` // Pack digest modulo volatile fields
	OutcomeCode   string `json:"outcome_code"`
	ArtifactPath  string `json:"artifact_path"`
	RecordedAt    string `json:"recorded_at"`
}
