package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/suitegrid/internal/app"
	"github.com/specialistvlad/suitegrid/internal/version"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

const usage = `
suitegrid - set up and run suites of shared-step test tasks.

Usage:
  suitegrid setup [options] DEFINITIONS_PATH
  suitegrid run   [options] CHECKPOINT_PATH
  suitegrid list  [options] DEFINITIONS_PATH

DEFINITIONS_PATH is a .hcl file or a directory of .hcl files.
CHECKPOINT_PATH is a work directory, a task directory or a step directory.

Run 'suitegrid COMMAND -h' for the options of a command.
`

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if len(args) == 0 {
		fmt.Fprint(output, usage)
		return nil, true, nil
	}

	command := args[0]
	switch command {
	case "-h", "-help", "--help", "help":
		fmt.Fprint(output, usage)
		return nil, true, nil
	case "-version", "--version", "version":
		fmt.Fprintf(output, "suitegrid %s\n", version.Version)
		return nil, true, nil
	case app.CommandSetup, app.CommandRun, app.CommandList:
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", command)}
	}

	flagSet := flag.NewFlagSet("suitegrid "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, "\nUsage of suitegrid %s:\n", command)
		flagSet.PrintDefaults()
	}

	cfg := app.Config{Command: command}
	var configFiles, tasks stringList
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	switch command {
	case app.CommandSetup, app.CommandList:
		flagSet.StringVar(&cfg.MachineConfig, "machine-config", "", "Machine config layer (yaml).")
		flagSet.Var(&configFiles, "config", "User config layer (yaml). Repeatable; later files win.")
		flagSet.StringVar(&cfg.Component, "component", "", "Component to use when the definitions hold several.")
		if command == app.CommandSetup {
			flagSet.StringVar(&cfg.Suite, "suite", "", "Suite to set up.")
			flagSet.Var(&tasks, "task", "Task path to set up. Repeatable.")
			flagSet.StringVar(&cfg.WorkDir, "work-dir", "", "Directory to materialize the work area in.")
		}
	case app.CommandRun:
		flagSet.IntVar(&cfg.Cores, "cores", 0, "Cores available to this run. 0 uses every CPU.")
		flagSet.StringVar(&cfg.BaselineDir, "baseline", "", "Reference work directory to compare baseline files against.")
		flagSet.StringVar(&cfg.EventsURL, "events-url", "", "socket.io URL to publish progress to.")
		flagSet.StringVar(&cfg.EventsNamespace, "events-namespace", "/", "socket.io namespace for progress events.")
		flagSet.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %v", flagSet.Args()[1:])}
	}
	if path == "" {
		slog.Debug("No path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if command == app.CommandRun {
		cfg.CheckpointPath = path
	} else {
		cfg.DefinitionsPath = path
	}
	cfg.ConfigFiles = configFiles
	cfg.Tasks = tasks

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	cfg.LogFormat = logFormat
	cfg.LogLevel = logLevel
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
