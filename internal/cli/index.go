package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/symbolpack/internal/index"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	BinaryPath         string
	RawSymbols         string
	SymbolPack         string
	Summary            string
	Output             string
	AnalysisRunID      string
	DecompileArchive   string
	ClassificationCode string
}

// IndexResult is the index command's output.
type IndexResult struct {
	AnalysisRunID      string  `json:"analysis_run_id"`
	IndexPath          string  `json:"index_path"`
	FingerprintID      string  `json:"fingerprint_id"`
	FingerprintSource  string  `json:"fingerprint_source"`
	ClassificationCode string  `json:"classification_code"`
	SymbolPackSha256   *string `json:"symbol_pack_sha256"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write the artifact index of an analysis run",
		Long: `Record where every artifact of an analysis run lives, with sha256 hashes
of the ones that exist. The binary fingerprint is taken from the symbol
pack when the pack carries a well-formed one; otherwise the binary is
hashed.

Exit codes:
  0 - Index written
  1 - The index failed schema validation
  2 - Command error (binary needed but missing, bad config)

Examples:
  symbolpack index --binary-path swfoc.exe --raw-symbols raw-symbols.json \
    --symbol-pack symbol-pack.json --summary analysis-summary.json \
    --output artifact-index.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BinaryPath, "binary-path", "", "analyzed binary (required)")
	cmd.Flags().StringVar(&opts.RawSymbols, "raw-symbols", "", "raw symbol export (required)")
	cmd.Flags().StringVar(&opts.SymbolPack, "symbol-pack", "", "symbol pack (required)")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "analysis summary (required)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "artifact index output path (required)")
	cmd.Flags().StringVar(&opts.AnalysisRunID, "analysis-run-id", "", "analysis run id (default: generated UUIDv7)")
	cmd.Flags().StringVar(&opts.DecompileArchive, "decompile-archive", "", "decompile archive to index")
	cmd.Flags().StringVar(&opts.ClassificationCode, "classification-code", "", "override the classification code")
	for _, name := range []string{"binary-path", "raw-symbols", "symbol-pack", "summary", "output"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runIndex(opts *IndexOptions, cmd *cobra.Command) error {
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

	indexerOpts := []index.Option{index.WithLogger(env.logger)}
	if env.validator != nil {
		indexerOpts = append(indexerOpts, index.WithValidator(env.validator))
	}
	if env.ledger != nil {
		indexerOpts = append(indexerOpts, index.WithLedger(env.ledger))
	}
	indexer := index.NewIndexer(env.fingerprints, env.cfg.Analyzer.Name, indexerOpts...)

	result, err := indexer.Write(cmd.Context(), index.Request{
		AnalysisRunID:        env.runID(opts.AnalysisRunID),
		BinaryPath:           opts.BinaryPath,
		RawSymbolsPath:       opts.RawSymbols,
		SymbolPackPath:       opts.SymbolPack,
		SummaryPath:          opts.Summary,
		OutputPath:           opts.Output,
		DecompileArchivePath: opts.DecompileArchive,
		ClassificationCode:   opts.ClassificationCode,
	})
	if err != nil {
		return formatter.Fail("index failed", err, nil)
	}

	out := IndexResult{
		AnalysisRunID:      result.Index.AnalysisRunID,
		IndexPath:          result.Path,
		FingerprintID:      result.Index.BinaryFingerprint.FingerprintID,
		FingerprintSource:  result.Index.FingerprintSource,
		ClassificationCode: result.Index.ClassificationCode,
		SymbolPackSha256:   result.Index.FileHashes.SymbolPackSha256,
	}
	return formatter.Success(out, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Artifact index written: %s\n", out.IndexPath)
		fmt.Fprintf(w, "  Run:            %s\n", out.AnalysisRunID)
		fmt.Fprintf(w, "  Fingerprint:    %s (from %s)\n", out.FingerprintID, out.FingerprintSource)
		fmt.Fprintf(w, "  Classification: %s\n", out.ClassificationCode)
	})
}
