// Package config loads symbolpack settings from .symbolpack/config.yml and
// SYMBOLPACK_* environment variables.
package config

import (
	"github.com/roach88/symbolpack/internal/anchor"
	"github.com/roach88/symbolpack/internal/pack"
)

// Config is the complete symbolpack configuration.
type Config struct {
	Analyzer     AnalyzerConfig     `yaml:"analyzer" mapstructure:"analyzer"`
	Anchors      AnchorsConfig      `yaml:"anchors" mapstructure:"anchors"`
	Capabilities CapabilitiesConfig `yaml:"capabilities" mapstructure:"capabilities"`
	Ledger       LedgerConfig       `yaml:"ledger" mapstructure:"ledger"`
	Schema       SchemaConfig       `yaml:"schema" mapstructure:"schema"`
}

// AnalyzerConfig describes the upstream tool that produced the raw export.
type AnalyzerConfig struct {
	Name      string `yaml:"name" mapstructure:"name"`           // provenance and reason-code prefix
	Version   string `yaml:"version" mapstructure:"version"`     // also read from GHIDRA_VERSION
	Toolchain string `yaml:"toolchain" mapstructure:"toolchain"` // buildMetadata.toolchain
	Notes     string `yaml:"notes" mapstructure:"notes"`         // buildMetadata.notes
}

// AnchorsConfig sets the fixed per-anchor fields.
type AnchorsConfig struct {
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	ValueType  string  `yaml:"value_type" mapstructure:"value_type"`
}

// CapabilitiesConfig selects the capability registry.
type CapabilitiesConfig struct {
	Registry string `yaml:"registry" mapstructure:"registry"` // empty selects the embedded registry
}

// LedgerConfig locates the run ledger.
type LedgerConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // empty disables the ledger
}

// SchemaConfig toggles document validation before writing.
type SchemaConfig struct {
	Validate bool `yaml:"validate" mapstructure:"validate"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	anchors := anchor.DefaultOptions()
	meta := pack.DefaultMetadata()
	return &Config{
		Analyzer: AnalyzerConfig{
			Name:      meta.Analyzer,
			Version:   meta.AnalyzerVersion,
			Toolchain: meta.Toolchain,
			Notes:     meta.Notes,
		},
		Anchors: AnchorsConfig{
			Confidence: anchors.Confidence,
			ValueType:  anchors.ValueType,
		},
		Schema: SchemaConfig{Validate: true},
	}
}

// AnchorOptions converts the configuration into canonicalizer options.
func (c *Config) AnchorOptions() anchor.Options {
	return anchor.Options{
		Analyzer:   c.Analyzer.Name,
		Confidence: c.Anchors.Confidence,
		ValueType:  c.Anchors.ValueType,
	}
}

// Metadata converts the configuration into pack build metadata.
func (c *Config) Metadata() pack.Metadata {
	return pack.Metadata{
		Analyzer:        c.Analyzer.Name,
		AnalyzerVersion: c.Analyzer.Version,
		Toolchain:       c.Analyzer.Toolchain,
		Notes:           c.Analyzer.Notes,
	}
}
