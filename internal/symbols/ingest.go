// Package symbols ingests raw symbol exports produced by an upstream static
// analyzer.
//
// Ingestion is permissive: entries missing a name or address are expected
// noise from the analyzer and are skipped, not treated as failures. Skipped
// entries are reported in IngestResult so the loss stays observable.
package symbols

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMalformedExport is returned when the export document itself cannot be
// interpreted (not JSON, or "symbols" is not a list).
var ErrMalformedExport = errors.New("malformed symbol export")

// DefaultKind is assigned to symbols whose kind is missing or blank.
const DefaultKind = "unknown"

// RawSymbol is an unprocessed (name, address, kind) record.
type RawSymbol struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Kind    string `json:"kind"`
}

// Skip reasons.
const (
	SkipNotObject      = "entry is not an object"
	SkipMissingName    = "missing name"
	SkipMissingAddress = "missing address"
)

// SkippedEntry identifies an export entry that was dropped during ingestion.
type SkippedEntry struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// IngestResult carries the valid symbols in input order plus every entry
// that was dropped.
type IngestResult struct {
	Symbols []RawSymbol
	Skipped []SkippedEntry
}

// LoadFile reads and ingests the export at path.
// A missing file is returned as an error wrapping fs.ErrNotExist.
func LoadFile(path string) (*IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw symbols: %w", err)
	}
	result, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// Parse ingests an export document.
func Parse(data []byte) (*IngestResult, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return Ingest(doc.Symbols), nil
}

// Ingest validates raw entries. Order is preserved; it carries no meaning
// downstream.
func Ingest(entries []json.RawMessage) *IngestResult {
	result := &IngestResult{
		Symbols: make([]RawSymbol, 0, len(entries)),
		Skipped: []SkippedEntry{},
	}
	for i, raw := range entries {
		sym, reason := ingestEntry(raw)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedEntry{Index: i, Reason: reason})
			continue
		}
		result.Symbols = append(result.Symbols, sym)
	}
	return result
}

func ingestEntry(raw json.RawMessage) (RawSymbol, string) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return RawSymbol{}, SkipNotObject
	}

	name := strings.TrimSpace(scalarText(fields["name"]))
	if name == "" {
		return RawSymbol{}, SkipMissingName
	}
	address := strings.TrimSpace(scalarText(fields["address"]))
	if address == "" {
		return RawSymbol{}, SkipMissingAddress
	}
	kind := strings.TrimSpace(scalarText(fields["kind"]))
	if kind == "" {
		kind = DefaultKind
	}
	return RawSymbol{Name: name, Address: address, Kind: kind}, ""
}

// scalarText stringifies JSON scalars. Null, objects and arrays yield "".
func scalarText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
