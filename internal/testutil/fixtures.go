package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Symbol is a raw export entry as written by the upstream analyzer.
type Symbol struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Kind    string `json:"kind,omitempty"`
}

// WriteRawSymbols writes a raw symbol export into dir and returns its path.
func WriteRawSymbols(t *testing.T, dir, name string, symbols ...Symbol) string {
	t.Helper()
	if symbols == nil {
		symbols = []Symbol{}
	}
	data, err := json.MarshalIndent(map[string]any{"symbols": symbols}, "", "  ")
	if err != nil {
		t.Fatalf("marshal raw symbols: %v", err)
	}
	return WriteFile(t, dir, name, data)
}

// WriteBinary writes fake binary content into dir and returns its path.
func WriteBinary(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	return WriteFile(t, dir, name, content)
}

// WriteFile writes data to dir/name, creating dir if needed.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// CreditsSymbols is the two-variant credits export used across tests.
func CreditsSymbols() []Symbol {
	return []Symbol{
		{Name: "g_Credits", Address: "0x00401000", Kind: "data"},
		{Name: "G-CREDITS", Address: "0x00401000", Kind: "data"},
	}
}
