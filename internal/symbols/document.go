package symbols

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/roach88/symbolpack/internal/ir"
)

// symbolsKey is the top-level key of the export that holds the entry list.
const symbolsKey = "symbols"

// Document is a raw export with its top-level fields preserved verbatim.
// Entries in Symbols are kept undecoded so malformed ones survive a
// round trip unchanged.
type Document struct {
	Fields  map[string]json.RawMessage
	Symbols []json.RawMessage
}

// ParseDocument decodes an export document. A missing "symbols" key is an
// empty list; a non-list value is ErrMalformedExport.
func ParseDocument(data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformedExport)
	}

	doc := &Document{Fields: fields, Symbols: []json.RawMessage{}}
	raw, ok := fields[symbolsKey]
	if !ok || string(raw) == "null" {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc.Symbols); err != nil {
		return nil, fmt.Errorf("%w: %q is not a list", ErrMalformedExport, symbolsKey)
	}
	return doc, nil
}

// ReadDocument reads and decodes the export at path.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw symbols: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Reversed returns a copy of the document with the symbol list in reverse
// order. All other top-level fields are kept.
func (d *Document) Reversed() *Document {
	reversed := slices.Clone(d.Symbols)
	slices.Reverse(reversed)
	return d.withSymbols(reversed)
}

// Rotated returns a copy of the document with the symbol list rotated left
// by n positions.
func (d *Document) Rotated(n int) *Document {
	if len(d.Symbols) == 0 {
		return d.withSymbols([]json.RawMessage{})
	}
	n %= len(d.Symbols)
	rotated := make([]json.RawMessage, 0, len(d.Symbols))
	rotated = append(rotated, d.Symbols[n:]...)
	rotated = append(rotated, d.Symbols[:n]...)
	return d.withSymbols(rotated)
}

func (d *Document) withSymbols(entries []json.RawMessage) *Document {
	fields := make(map[string]json.RawMessage, len(d.Fields)+1)
	for k, v := range d.Fields {
		fields[k] = v
	}
	return &Document{Fields: fields, Symbols: entries}
}

// Ingest ingests the document's symbol entries.
func (d *Document) Ingest() *IngestResult {
	return Ingest(d.Symbols)
}

// MarshalJSON renders the document with the current symbol list.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	entries, err := json.Marshal(d.Symbols)
	if err != nil {
		return nil, err
	}
	out[symbolsKey] = entries
	return json.Marshal(out)
}

// Write writes the document to path in the standard artifact encoding.
func (d *Document) Write(path string) error {
	return ir.WriteDocument(path, d)
}
