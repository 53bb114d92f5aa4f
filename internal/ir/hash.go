package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSymbolPack = "symbolpack/pack/v1"
)

// Volatile build metadata fields. These are the only fields allowed to
// differ between two packs built from the same input.
var VolatileBuildMetadataFields = []string{"analysisRunId", "generatedAtUtc"}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StripVolatile returns a deep copy of a generic pack document with the
// volatile build metadata fields removed. Non-object input is copied as-is.
func StripVolatile(pack any) any {
	out := deepCopy(pack)
	obj, ok := out.(map[string]any)
	if !ok {
		return out
	}
	meta, ok := obj["buildMetadata"].(map[string]any)
	if !ok {
		return out
	}
	for _, field := range VolatileBuildMetadataFields {
		delete(meta, field)
	}
	return out
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = deepCopy(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopy(elem)
		}
		return out
	default:
		return val
	}
}

// StableCanonical returns the canonical JSON of a pack with volatile fields
// stripped. Two packs are equal modulo volatility iff these bytes match.
func StableCanonical(pack any) ([]byte, error) {
	generic, err := ToGeneric(pack)
	if err != nil {
		return nil, err
	}
	return MarshalCanonical(StripVolatile(generic))
}

// PackDigest computes the content digest of a pack modulo volatile fields.
// Accepts a *SymbolPack or its generic JSON form.
func PackDigest(pack any) (string, error) {
	canonical, err := StableCanonical(pack)
	if err != nil {
		return "", fmt.Errorf("PackDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSymbolPack, canonical), nil
}

// MustPackDigest is like PackDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPackDigest(pack any) string {
	digest, err := PackDigest(pack)
	if err != nil {
		panic(err)
	}
	return digest
}
