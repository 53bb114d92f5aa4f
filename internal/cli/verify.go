package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/symbolpack/internal/determinism"
	"github.com/roach88/symbolpack/internal/ir"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	RawSymbols        string
	BinaryPath        string
	AnalysisRunIDBase string
	OutputDir         string
}

// VerifyResult is the verify command's output.
type VerifyResult struct {
	Deterministic      bool     `json:"deterministic"`
	ClassificationCode string   `json:"classification_code"`
	ReportPath         string   `json:"report_path"`
	FirstPackDigest    string   `json:"first_pack_digest"`
	SecondPackDigest   string   `json:"second_pack_digest"`
	Differences        []string `json:"differences"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that symbol pack emission is deterministic",
		Long: `Emit the symbol pack twice, once from the export as given and once from
the export with its symbol list reversed, and compare the two packs with
analysisRunId and generatedAtUtc excluded. A determinism report is
written to the output directory either way.

Exit codes:
  0 - Packs are identical
  1 - Packs differ, or a document failed schema validation
  2 - Command error (missing inputs, malformed export, bad config)

Examples:
  symbolpack verify --raw-symbols raw-symbols.json --binary-path swfoc.exe \
    --output-dir out/determinism
  symbolpack verify ... --analysis-run-id-base nightly-17 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RawSymbols, "raw-symbols", "", "raw symbol export (required)")
	cmd.Flags().StringVar(&opts.BinaryPath, "binary-path", "", "analyzed binary (required)")
	cmd.Flags().StringVar(&opts.AnalysisRunIDBase, "analysis-run-id-base", "", "run id base; runs get -a and -b suffixes (default: generated UUIDv7)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "directory for both emissions and the report (required)")
	_ = cmd.MarkFlagRequired("raw-symbols")
	_ = cmd.MarkFlagRequired("binary-path")
	_ = cmd.MarkFlagRequired("output-dir")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
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

	verifierOpts := []determinism.Option{determinism.WithLogger(env.logger)}
	if env.validator != nil {
		verifierOpts = append(verifierOpts, determinism.WithValidator(env.validator))
	}
	if env.ledger != nil {
		verifierOpts = append(verifierOpts, determinism.WithLedger(env.ledger))
	}
	verifier := determinism.NewVerifier(env.emitter(), env.cfg.Analyzer.Name, verifierOpts...)

	result, err := verifier.Verify(cmd.Context(), determinism.Request{
		RawSymbolsPath:    opts.RawSymbols,
		BinaryPath:        opts.BinaryPath,
		AnalysisRunIDBase: env.runID(opts.AnalysisRunIDBase),
		OutputDir:         opts.OutputDir,
	})

	var mismatch *determinism.MismatchError
	if errors.As(err, &mismatch) {
		out := newVerifyResult(mismatch.Report, mismatch.ReportPath)
		if !formatter.IsJSON() {
			renderVerify(formatter.Writer, out)
		}
		return formatter.Fail("determinism check failed", err, out)
	}
	if err != nil {
		return formatter.Fail("determinism check failed", err, nil)
	}

	out := newVerifyResult(result.Report, result.ReportPath)
	return formatter.Success(out, func(w io.Writer) {
		renderVerify(w, out)
	})
}

func newVerifyResult(report *ir.DeterminismReport, reportPath string) VerifyResult {
	return VerifyResult{
		Deterministic:      report.Deterministic,
		ClassificationCode: report.ReasonCode,
		ReportPath:         reportPath,
		FirstPackDigest:    report.FirstPackDigest,
		SecondPackDigest:   report.SecondPackDigest,
		Differences:        report.Differences,
	}
}

func renderVerify(w io.Writer, out VerifyResult) {
	if out.Deterministic {
		fmt.Fprintf(w, "✓ Deterministic (%s)\n", out.ClassificationCode)
	} else {
		fmt.Fprintf(w, "✗ Not deterministic (%s)\n", out.ClassificationCode)
	}
	fmt.Fprintf(w, "  Report: %s\n", out.ReportPath)
	fmt.Fprintf(w, "  First:  %s\n", out.FirstPackDigest)
	fmt.Fprintf(w, "  Second: %s\n", out.SecondPackDigest)
	if len(out.Differences) > 0 {
		fmt.Fprintf(w, "  Differences (%d):\n", len(out.Differences))
		for _, path := range out.Differences {
			fmt.Fprintf(w, "    %s\n", path)
		}
	}
}
