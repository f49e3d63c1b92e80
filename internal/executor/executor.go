// Package executor defines the interface for the run phase.
package executor

import (
	"context"

	"github.com/specialistvlad/suitegrid/internal/events"
	"github.com/specialistvlad/suitegrid/internal/report"
)

// Executor runs a frozen plan and reports per-step, per-task and suite
// outcomes. A returned error means the run could not proceed at all; step
// and task failures are recorded in the report instead.
type Executor interface {
	Execute(ctx context.Context) (*report.Report, error)
}

// Options carries the machine facts and optional collaborators of a run.
type Options struct {
	// Available is the number of cores this run may use.
	Available int
	// BaselineDir is the root of the reference run; empty disables comparison.
	BaselineDir string
	// Sink receives progress events. Nil means events.NopSink.
	Sink events.Sink
	// OnStep is called with the step about to run, for health reporting.
	OnStep func(id string)
}
