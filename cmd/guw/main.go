package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"guw.dev/guw/internal/cli"
	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := cli.NewRootCmd(version, commit, date)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ColorRed("error: "+err.Error()))
		os.Exit(guwerrors.ExitCode(err))
	}
}
