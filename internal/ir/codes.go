package ir

import "strings"

// Classification code suffixes. A full code is prefixed with the upper-cased
// analyzer name, e.g. GHIDRA_DETERMINISM_PASS.
const (
	SuffixPackEmitted         = "SYMBOL_PACK_EMITTED"
	SuffixDeterminismPass     = "DETERMINISM_PASS"
	SuffixDeterminismMismatch = "DETERMINISM_MISMATCH"
	SuffixArtifactIndexReady  = "ARTIFACT_INDEX_READY"
)

// ClassificationCode builds the machine-checkable code for analyzer and suffix.
func ClassificationCode(analyzer, suffix string) string {
	prefix := strings.ToUpper(strings.ReplaceAll(analyzer, "-", "_"))
	if prefix == "" {
		return suffix
	}
	return prefix + "_" + suffix
}
