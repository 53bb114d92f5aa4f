package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/symbolpack/internal/ir"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Fingerprint string
}

// HistoryResult is the history command's output.
type HistoryResult struct {
	Runs []ir.RunRecord `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded pipeline runs",
		Long: `List the stage outcomes recorded in the run ledger, oldest first.
Requires a ledger (--ledger or ledger.path).

Examples:
  symbolpack history --ledger runs.db
  symbolpack history --ledger runs.db --fingerprint swfoc_0123456789abcdef`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only runs for this fingerprint id")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
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

	if env.ledger == nil {
		return formatter.FailWith(ExitCommandError, ErrCodeConfig,
			"history requires a ledger (--ledger or ledger.path)", nil, nil)
	}

	var runs []ir.RunRecord
	if opts.Fingerprint != "" {
		runs, err = env.ledger.ListRunsByFingerprint(cmd.Context(), opts.Fingerprint)
	} else {
		runs, err = env.ledger.ListRuns(cmd.Context())
	}
	if err != nil {
		return formatter.Fail("failed to read ledger", err, nil)
	}

	return formatter.Success(HistoryResult{Runs: runs}, func(w io.Writer) {
		renderHistory(w, runs)
	})
}

func renderHistory(w io.Writer, runs []ir.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tSTAGE\tFINGERPRINT\tOUTCOME\tRECORDED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Seq, r.AnalysisRunID, r.Stage, r.FingerprintID, r.OutcomeCode, r.RecordedAt)
	}
	tw.Flush()
}
