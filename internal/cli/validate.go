package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/symbolpack/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Kind string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	File       string   `json:"file"`
	Kind       string   `json:"kind"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate --kind <pack|summary|report|index> <file>",
		Short: "Validate a document against its schema",
		Long: `Validate an existing symbol pack, analysis summary, determinism report
or artifact index against its schema. Validation is independent of the
schema.validate setting.

Exit codes:
  0 - Document is valid
  1 - Document violates the schema
  2 - Command error (unreadable file, unknown kind)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "document kind: pack, summary, report or index (required)")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runValidate(opts *ValidateOptions, file string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	kind, err := schema.ParseKind(opts.Kind)
	if err != nil {
		return formatter.FailWith(ExitCommandError, ErrCodeGeneric, "invalid --kind", err, nil)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return formatter.Fail("cannot read document", err, nil)
	}

	validator, err := schema.New()
	if err != nil {
		return formatter.FailWith(ExitCommandError, ErrCodeGeneric, "compile schemas", err, nil)
	}
	formatter.VerboseLog("Validating %s as %s", file, kind)

	result := ValidationResult{File: file, Kind: string(kind), Valid: true}
	err = validator.ValidateBytes(kind, data)
	var violation *schema.ValidationError
	if errors.As(err, &violation) {
		result.Valid = false
		result.Violations = violation.Violations
		if !formatter.IsJSON() {
			renderValidation(formatter.Writer, result)
		}
		return formatter.FailWith(ExitFailure, ErrCodeSchema,
			fmt.Sprintf("%s: %d schema violation(s)", file, len(result.Violations)), nil, result)
	}
	if err != nil {
		return formatter.Fail("validation failed", err, nil)
	}

	return formatter.Success(result, func(w io.Writer) {
		renderValidation(w, result)
	})
}

func renderValidation(w io.Writer, result ValidationResult) {
	if result.Valid {
		fmt.Fprintf(w, "✓ %s is a valid %s document\n", result.File, result.Kind)
		return
	}
	fmt.Fprintf(w, "✗ %s is not a valid %s document\n", result.File, result.Kind)
	for _, v := range result.Violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
}
