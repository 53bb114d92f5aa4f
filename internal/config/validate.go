package config

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidAnalyzer indicates a missing or malformed analyzer name.
	ErrInvalidAnalyzer = errors.New("invalid analyzer name")

	// ErrEmptyAnalyzerVersion indicates a blank analyzer version.
	ErrEmptyAnalyzerVersion = errors.New("empty analyzer version")

	// ErrInvalidConfidence indicates a confidence outside [0, 1].
	ErrInvalidConfidence = errors.New("invalid anchor confidence")

	// ErrEmptyValueType indicates a blank anchor value type.
	ErrEmptyValueType = errors.New("empty anchor value type")
)

// Analyzer names end up in reason codes, so they stay identifier-like.
var analyzerName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Validate checks that the configuration is usable. All problems are
// reported together.
func Validate(cfg *Config) error {
	var errs []error

	if !analyzerName.MatchString(cfg.Analyzer.Name) {
		errs = append(errs, fmt.Errorf("%w: %q (letters, digits, '-' and '_' only)", ErrInvalidAnalyzer, cfg.Analyzer.Name))
	}
	if cfg.Analyzer.Version == "" {
		errs = append(errs, ErrEmptyAnalyzerVersion)
	}
	if cfg.Anchors.Confidence < 0 || cfg.Anchors.Confidence > 1 {
		errs = append(errs, fmt.Errorf("%w: %v must be between 0 and 1", ErrInvalidConfidence, cfg.Anchors.Confidence))
	}
	if cfg.Anchors.ValueType == "" {
		errs = append(errs, ErrEmptyValueType)
	}

	return errors.Join(errs...)
}
