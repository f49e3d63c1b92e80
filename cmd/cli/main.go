package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/suitegrid/internal/app"
	"github.com/specialistvlad/suitegrid/internal/cli"
	"github.com/specialistvlad/suitegrid/internal/report"
)

// main is the entrypoint for the suitegrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	suitegrid := app.NewApp(outW, appConfig)
	ctx := context.Background()

	switch appConfig.Command {
	case app.CommandSetup:
		_, err := suitegrid.Setup(ctx)
		return err
	case app.CommandList:
		return suitegrid.List(ctx)
	default:
		r, err := suitegrid.Run(ctx)
		if err != nil {
			return err
		}
		if code := r.ExitCode(); code != report.ExitOK {
			return &cli.ExitError{Code: code, Message: fmt.Sprintf("suite %s finished with %s", r.Suite, r.State)}
		}
		return nil
	}
}
