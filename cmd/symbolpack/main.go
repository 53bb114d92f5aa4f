// Command symbolpack turns static-analysis symbol exports into
// reproducible symbol packs.
package main

import (
	"os"

	"github.com/roach88/symbolpack/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
