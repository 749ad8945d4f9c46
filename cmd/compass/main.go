// Package main provides the entry point for the compass CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/compass/internal/cli"
)

// Build information set via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()

	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()

	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
