package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/expgridgo/internal/app"
	"github.com/vk/expgridgo/internal/cli"
	"github.com/vk/expgridgo/internal/executor"
	"github.com/vk/expgridgo/internal/hcl"
)

// main is the entrypoint for the expgridgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. A failed trainer run surfaces as an ExitError carrying the
// trainer's own exit code, which main propagates unchanged.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl.NewLoader()
	gridApp := app.NewApp(outW, appConfig, loader)

	if runErr := gridApp.Run(context.Background(), appConfig); runErr != nil {
		var rerr *executor.RunError
		if errors.As(runErr, &rerr) {
			return &cli.ExitError{Code: rerr.ExitCode, Message: runErr.Error()}
		}
		return runErr
	}
	return nil
}
