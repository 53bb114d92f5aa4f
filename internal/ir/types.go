package ir

// CapabilityState is the verification state of a capability.
type CapabilityState string

const (
	StateVerified    CapabilityState = "Verified"
	StateUnavailable CapabilityState = "Unavailable"
)

// Capability reason codes.
const (
	ReasonProbePass       = "CAPABILITY_PROBE_PASS"
	ReasonRequiredMissing = "CAPABILITY_REQUIRED_MISSING"
)

// Anchor is a canonical, deduplicated named memory location.
type Anchor struct {
	ID         string  `json:"id"`
	Address    string  `json:"address"`
	Module     string  `json:"module"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	ValueType  string  `json:"valueType"`
}

// Capability is a feature whose availability derives from required anchors.
type Capability struct {
	FeatureID       string          `json:"featureId"`
	Available       bool            `json:"available"`
	State           CapabilityState `json:"state"`
	ReasonCode      string          `json:"reasonCode"`
	RequiredAnchors []string        `json:"requiredAnchors"`
}

// BinaryFingerprint is the content identity of an analyzed binary.
type BinaryFingerprint struct {
	FingerprintID string `json:"fingerprintId"`
	ModuleName    string `json:"moduleName"`
	FileSha256    string `json:"fileSha256"`
}

// Valid reports whether every fingerprint field is non-empty.
func (f BinaryFingerprint) Valid() bool {
	return f.FingerprintID != "" && f.ModuleName != "" && f.FileSha256 != ""
}

// BuildMetadata describes the run that produced a symbol pack.
// AnalysisRunID and GeneratedAtUtc are volatile and differ per invocation.
type BuildMetadata struct {
	AnalysisRunID  string `json:"analysisRunId"`
	GeneratedAtUtc string `json:"generatedAtUtc"`
	Toolchain      string `json:"toolchain"`
	Notes          string `json:"notes"`
}

// SymbolPack is the canonical, schema-versioned output of one analysis run.
// Anchors are sorted by ID; capabilities follow registry order.
type SymbolPack struct {
	SchemaVersion     string            `json:"schemaVersion"`
	BinaryFingerprint BinaryFingerprint `json:"binaryFingerprint"`
	BuildMetadata     BuildMetadata     `json:"buildMetadata"`
	Anchors           []Anchor          `json:"anchors"`
	Capabilities      []Capability      `json:"capabilities"`
}

// CoverageStats summarizes how much of the raw export became anchors.
type CoverageStats struct {
	RawSymbolCount           int `json:"rawSymbolCount"`
	SkippedSymbolCount       int `json:"skippedSymbolCount"`
	AnchorCount              int `json:"anchorCount"`
	AvailableCapabilityCount int `json:"availableCapabilityCount"`
}

// SummaryPointers locates the documents a summary describes.
// DecompileArchivePath is empty when no archive was produced.
type SummaryPointers struct {
	RawSymbolsPath       string `json:"rawSymbolsPath"`
	SymbolPackPath       string `json:"symbolPackPath"`
	DecompileArchivePath string `json:"decompileArchivePath"`
}

// AnalysisSummary is the coverage/warning companion of a symbol pack.
type AnalysisSummary struct {
	SchemaVersion    string            `json:"schemaVersion"`
	AnalysisRunID    string            `json:"analysisRunId"`
	BinaryPath       string            `json:"binaryPath"`
	ToolVersions     map[string]string `json:"toolVersions"`
	CoverageStats    CoverageStats     `json:"coverageStats"`
	Warnings         []string          `json:"warnings"`
	ArtifactPointers SummaryPointers   `json:"artifactPointers"`
}

// DeterminismReport records the outcome of a determinism check.
type DeterminismReport struct {
	Deterministic    bool     `json:"deterministic"`
	ReasonCode       string   `json:"reasonCode"`
	FirstPackPath    string   `json:"firstPackPath"`
	SecondPackPath   string   `json:"secondPackPath"`
	FirstPackDigest  string   `json:"firstPackDigest"`
	SecondPackDigest string   `json:"secondPackDigest"`
	Differences      []string `json:"differences"`
}

// IndexPointers locates every artifact of a run. Nil means not produced.
type IndexPointers struct {
	RawSymbolsPath       string  `json:"rawSymbolsPath"`
	SymbolPackPath       string  `json:"symbolPackPath"`
	AnalysisSummaryPath  string  `json:"analysisSummaryPath"`
	DecompileArchivePath *string `json:"decompileArchivePath"`
}

// FileHashes holds sha256 digests of the indexed artifacts.
// Nil means the file does not exist.
type FileHashes struct {
	RawSymbolsSha256       *string `json:"rawSymbolsSha256"`
	SymbolPackSha256       *string `json:"symbolPackSha256"`
	AnalysisSummarySha256  *string `json:"analysisSummarySha256"`
	DecompileArchiveSha256 *string `json:"decompileArchiveSha256"`
}

// Fingerprint sources recorded in an artifact index.
const (
	FingerprintFromPack   = "symbol-pack"
	FingerprintFromBinary = "binary"
)

// ArtifactIndex is the manifest of a run's artifacts.
type ArtifactIndex struct {
	SchemaVersion      string            `json:"schemaVersion"`
	AnalysisRunID      string            `json:"analysisRunId"`
	GeneratedAtUtc     string            `json:"generatedAtUtc"`
	ClassificationCode string            `json:"classificationCode"`
	BinaryFingerprint  BinaryFingerprint `json:"binaryFingerprint"`
	FingerprintSource  string            `json:"fingerprintSource"`
	ArtifactPointers   IndexPointers     `json:"artifactPointers"`
	FileHashes         FileHashes        `json:"fileHashes"`
}
