package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/faults"
)

// Environment variables set for every step process.
const (
	EnvCores          = "SUITEGRID_CORES"
	defaultThreadsVar = "OMP_NUM_THREADS"
	defaultLogFile    = "step.log"
)

// LogFile is the file a step's stdout and stderr go to, inside its directory.
func LogFile(inv *Invocation) string {
	name := defaultLogFile
	if inv.Config != nil && inv.Config.Has("execute", "log_file") {
		if v, err := inv.Config.Get("execute", "log_file"); err == nil && v != "" {
			name = v
		}
	}
	return filepath.Join(inv.Dir, name)
}

// Environment returns the process environment for a step.
func Environment(inv *Invocation) []string {
	threadsVar := defaultThreadsVar
	if inv.Config != nil && inv.Config.Has("parallel", "threads_variable") {
		if v, err := inv.Config.Get("parallel", "threads_variable"); err == nil && v != "" {
			threadsVar = v
		}
	}
	return append(os.Environ(),
		threadsVar+"="+strconv.Itoa(SplitCores(inv).Threads),
		EnvCores+"="+strconv.Itoa(inv.Cores),
	)
}

// RunCommand executes argv in the step directory with output appended to the
// step log. A non-zero exit is an ExecutionError.
func RunCommand(ctx context.Context, inv *Invocation, argv []string) error {
	logger := ctxlog.FromContext(ctx)
	id := inv.Step.ID()
	if len(argv) == 0 {
		logger.Debug("Step has no command.", "step", id)
		return nil
	}

	logPath := LogFile(inv)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return faults.Execution(faults.ErrNonZeroExit, id, err, "cannot open step log")
	}
	defer logFile.Close()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = Environment(inv)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	logger.Debug("Launching step command.", "step", id, "argv", argv, "dir", inv.Dir, "log", logPath)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return faults.Execution(faults.ErrCancelled, id, ctxErr, "command %q was stopped", argv[0])
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return faults.Execution(faults.ErrNonZeroExit, id, err, "command exited with code %d, see %s", exitErr.ExitCode(), logPath)
		}
		return faults.Execution(faults.ErrNonZeroExit, id, err, "command %q could not be started", argv[0])
	}
	return nil
}

// CheckOutputs fails when a declared output is missing after the command ran.
func CheckOutputs(inv *Invocation) error {
	for _, out := range inv.Step.Outputs {
		if _, err := os.Stat(filepath.Join(inv.Dir, filepath.FromSlash(out))); err != nil {
			return faults.Execution(faults.ErrMissingOutput, inv.Step.ID(), err, "declared output %q was not produced", out)
		}
	}
	return nil
}

// CheckReferenceInputs fails when an input linked to another step's output
// does not resolve yet, i.e. the producer did not leave the file behind.
func CheckReferenceInputs(inv *Invocation) error {
	for _, in := range inv.Step.Inputs {
		if !in.IsReference() {
			continue
		}
		if _, err := os.Stat(filepath.Join(inv.Dir, in.Filename)); err != nil {
			return faults.Execution(faults.ErrMissingInput, inv.Step.ID(), err, "input %q (%s) is not available", in.Filename, in.WorkDirTarget)
		}
	}
	return nil
}

// Split is how a granted core count is laid out for one launch.
type Split struct {
	NTasks      int
	CPUsPerTask int
	Threads     int
}

// SplitCores fits the step's requested layout into the granted cores. Tasks
// shrink first; when not even one task of the requested width fits, the
// width drops to the grant (never below min_cpus_per_task). Threads never
// exceed the cores of one task.
func SplitCores(inv *Invocation) Split {
	res := inv.Step.Resources()
	cores := max(inv.Cores, 1)
	cpus := max(res.CPUsPerTask, 1)
	if cores < cpus {
		cpus = max(res.MinCPUsPerTask, cores)
	}
	ntasks := min(max(cores/cpus, 1), max(res.NTasks, 1))
	return Split{
		NTasks:      ntasks,
		CPUsPerTask: cpus,
		Threads:     max(min(res.OpenMPThreads, cores/ntasks), 1),
	}
}

// Launcher builds the parallel launcher prefix from config
// "parallel:launcher", substituting {ntasks}, {cpus_per_task} and {cores}.
func Launcher(inv *Invocation) ([]string, error) {
	if inv.Config == nil || !inv.Config.Has("parallel", "launcher") {
		return nil, nil
	}
	parts, err := inv.Config.GetList("parallel", "launcher")
	if err != nil {
		return nil, err
	}

	split := SplitCores(inv)
	repl := map[string]string{
		"{ntasks}":        strconv.Itoa(split.NTasks),
		"{cpus_per_task}": strconv.Itoa(split.CPUsPerTask),
		"{cores}":         strconv.Itoa(inv.Cores),
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		if v, ok := repl[p]; ok {
			out[i] = v
			continue
		}
		out[i] = p
	}
	return out, nil
}

// Describe is a one-line summary used in logs.
func Describe(inv *Invocation) string {
	return fmt.Sprintf("%s step '%s' on %d cores", inv.Step.Kind, inv.Step.ID(), inv.Cores)
}
