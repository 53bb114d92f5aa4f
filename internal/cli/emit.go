package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/symbolpack/internal/capability"
	"github.com/roach88/symbolpack/internal/pack"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	RawSymbols       string
	BinaryPath       string
	AnalysisRunID    string
	OutputPack       string
	OutputSummary    string
	DecompileArchive string
}

// EmitResult is the emit command's output.
type EmitResult struct {
	AnalysisRunID         string `json:"analysis_run_id"`
	FingerprintID         string `json:"fingerprint_id"`
	PackPath              string `json:"pack_path"`
	SummaryPath           string `json:"summary_path"`
	PackDigest            string `json:"pack_digest"`
	AnchorCount           int    `json:"anchor_count"`
	SkippedSymbolCount    int    `json:"skipped_symbol_count"`
	AvailableCapabilities int    `json:"available_capabilities"`
	TotalCapabilities     int    `json:"total_capabilities"`
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Emit a symbol pack and analysis summary",
		Long: `Ingest a raw symbol export, canonicalize it into anchors, resolve
capabilities against the registry, and write the symbol pack and its
analysis summary.

Exit codes:
  0 - Documents written
  1 - A document failed schema validation
  2 - Command error (missing inputs, malformed export, bad config)

Examples:
  symbolpack emit --raw-symbols raw-symbols.json --binary-path swfoc.exe \
    --output-pack symbol-pack.json --output-summary analysis-summary.json
  symbolpack emit ... --analysis-run-id run-42 --ledger runs.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RawSymbols, "raw-symbols", "", "raw symbol export (required)")
	cmd.Flags().StringVar(&opts.BinaryPath, "binary-path", "", "analyzed binary (required)")
	cmd.Flags().StringVar(&opts.AnalysisRunID, "analysis-run-id", "", "analysis run id (default: generated UUIDv7)")
	cmd.Flags().StringVar(&opts.OutputPack, "output-pack", "", "symbol pack output path (required)")
	cmd.Flags().StringVar(&opts.OutputSummary, "output-summary", "", "analysis summary output path (required)")
	cmd.Flags().StringVar(&opts.DecompileArchive, "decompile-archive-path", "", "decompile archive to reference from the summary")
	_ = cmd.MarkFlagRequired("raw-symbols")
	_ = cmd.MarkFlagRequired("binary-path")
	_ = cmd.MarkFlagRequired("output-pack")
	_ = cmd.MarkFlagRequired("output-summary")

	return cmd
}

func runEmit(opts *EmitOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	env, err := newEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return formatter.FailWith(ExitCommandError, ErrCodeConfig, "setup failed", err, nil)
	}
	defer env.Close()

	result, err := env.emitter().Emit(cmd.Context(), pack.Request{
		RawSymbolsPath:       opts.RawSymbols,
		BinaryPath:           opts.BinaryPath,
		AnalysisRunID:        env.runID(opts.AnalysisRunID),
		OutputPack:           opts.OutputPack,
		OutputSummary:        opts.OutputSummary,
		DecompileArchivePath: opts.DecompileArchive,
	})
	if err != nil {
		return formatter.Fail("emit failed", err, nil)
	}

	out := EmitResult{
		AnalysisRunID:         result.Pack.BuildMetadata.AnalysisRunID,
		FingerprintID:         result.Pack.BinaryFingerprint.FingerprintID,
		PackPath:              result.PackPath,
		SummaryPath:           result.SummaryPath,
		PackDigest:            result.Digest,
		AnchorCount:           len(result.Pack.Anchors),
		SkippedSymbolCount:    result.Summary.CoverageStats.SkippedSymbolCount,
		AvailableCapabilities: capability.AvailableCount(result.Pack.Capabilities),
		TotalCapabilities:     len(result.Pack.Capabilities),
	}
	return formatter.Success(out, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Symbol pack emitted: %s\n", out.PackPath)
		fmt.Fprintf(w, "  Summary:      %s\n", out.SummaryPath)
		fmt.Fprintf(w, "  Run:          %s\n", out.AnalysisRunID)
		fmt.Fprintf(w, "  Fingerprint:  %s\n", out.FingerprintID)
		fmt.Fprintf(w, "  Anchors:      %d (%d symbols skipped)\n", out.AnchorCount, out.SkippedSymbolCount)
		fmt.Fprintf(w, "  Capabilities: %d/%d available\n", out.AvailableCapabilities, out.TotalCapabilities)
		fmt.Fprintf(w, "  Digest:       %s\n", out.PackDigest)
	})
}
