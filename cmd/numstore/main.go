// Package main provides the numstore CLI entrypoint.
//
// Usage:
//
//	numstore [--config numstore.yaml] <command> [subcommand] [options]
//
// Exit codes:
//   - 0: success
//   - 1: unexpected failure
//   - 2: invalid argument or unsupported element type
//   - 3: dataset not found
//   - 4: I/O, storage or decode failure
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/cli/cmd"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

// osExit is replaced in tests.
var osExit = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cmd.NewApp(commit)
	app.ExitErrHandler = func(_ *cli.Context, err error) {
		exitErrHandler(os.Stderr, err)
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles usage errors raised before any action ran.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		osExit(cmd.ExitCode(err))
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(stderr io.Writer, err error) {
	if err == nil {
		return
	}

	// Check for ExitCoder (from cli.Exit), handles wrapped errors
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(stderr, msg)
		}
		osExit(code)
		return
	}

	// Unexpected error - print and exit with the mapped code
	fmt.Fprintf(stderr, "Error: %v\n", err)
	osExit(cmd.ExitCode(err))
}
