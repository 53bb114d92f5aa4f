package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/symbolpack/internal/runid"
	"github.com/roach88/symbolpack/internal/testutil"
)

// runCLI executes the root command with opts and returns stdout, stderr
// and the command error.
func runCLI(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	if opts.RunIDs == nil {
		opts.RunIDs = runid.NewFixedGenerator("run-generated")
	}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decodeResponse parses a JSON CLIResponse and decodes its data into out.
func decodeResponse(t *testing.T, raw string, out any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), "output: %s", raw)
	if out != nil && resp.Data != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return resp
}

// inputs is a raw export plus binary on disk.
type inputs struct {
	dir    string
	raw    string
	binary string
}

func writeInputs(t *testing.T) inputs {
	t.Helper()
	dir := t.TempDir()
	symbols := append(testutil.CreditsSymbols(),
		testutil.Symbol{Name: "FogReveal", Address: "0x004020F0", Kind: "function"},
		testutil.Symbol{Name: "", Address: "0x1"},
	)
	return inputs{
		dir:    dir,
		raw:    testutil.WriteRawSymbols(t, dir, "raw-symbols.json", symbols...),
		binary: testutil.WriteBinary(t, dir, "swfoc.exe", []byte("MZ cli binary")),
	}
}

func (in inputs) path(name string) string {
	return filepath.Join(in.dir, name)
}

func (in inputs) emitArgs(extra ...string) []string {
	args := []string{"emit",
		"--raw-symbols", in.raw,
		"--binary-path", in.binary,
		"--output-pack", in.path("symbol-pack.json"),
		"--output-summary", in.path("analysis-summary.json"),
	}
	return append(args, extra...)
}

// decodeDetails decodes the error details of a JSON CLIResponse into out.
func decodeDetails(t *testing.T, resp CLIResponse, out any) {
	t.Helper()
	require.NotNil(t, resp.Error)
	data, err := json.Marshal(resp.Error.Details)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}
