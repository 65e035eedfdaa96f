package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/evtrace/internal"
	"github.com/valter-silva-au/evtrace/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing evtrace: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	if ferr := a.FlushMetrics(); ferr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", ferr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
