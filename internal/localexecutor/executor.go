// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface. Steps run one at a time in plan order.
package localexecutor

import (
	"context"
	"log/slog"
	"time"

	"github.com/specialistvlad/suitegrid/internal/baseline"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/events"
	"github.com/specialistvlad/suitegrid/internal/executor"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
	"github.com/specialistvlad/suitegrid/internal/report"
	"github.com/specialistvlad/suitegrid/internal/resources"
)

// Executor implements the executor.Executor interface for local execution.
type Executor struct {
	plan     *plan.Plan
	handlers *handlers.Handlers
	opts     executor.Options
}

// New creates a new local executor.
func New(p *plan.Plan, reg *handlers.Handlers, opts executor.Options) executor.Executor {
	if opts.Sink == nil {
		opts.Sink = events.NopSink{}
	}
	return &Executor{plan: p, handlers: reg, opts: opts}
}

// Execute walks the plan order. A step whose predecessor ended in ERROR is
// short-circuited to ERROR without running; a step already terminal in this
// invocation is never run again.
func (e *Executor) Execute(ctx context.Context) (*report.Report, error) {
	logger := ctxlog.FromContext(ctx)
	steps, err := e.plan.Steps()
	if err != nil {
		return nil, err
	}

	r := report.New(e.plan, e.opts.Available)
	logger.Info("🚀 Starting run.", "component", r.Component, "suite", r.Suite, "run_id", r.RunID, "steps", len(steps), "cores", e.opts.Available)
	e.publish(ctx, r, events.ScopeSuite, r.Suite, model.StateRunning, "")

	for _, s := range steps {
		rec := r.Step(s)
		if s.State().Terminal() {
			logger.Debug("Step already terminal, not running again.", "step", s.ID(), "state", s.State())
			rec.State = s.State()
			continue
		}
		e.runOne(ctx, r, s, rec)
	}

	if err := r.Finish(e.plan); err != nil {
		return r, err
	}
	for _, t := range r.Tasks {
		e.publish(ctx, r, events.ScopeTask, t.Path, t.State, "")
	}
	e.publish(ctx, r, events.ScopeSuite, r.Suite, r.State, "")
	logger.Info("🏁 Run finished.", "state", r.State, "tasks_failed", r.Summary.TasksFailed, "duration", r.Duration)
	return r, nil
}

func (e *Executor) runOne(ctx context.Context, r *report.Report, s *model.Step, rec *report.StepRecord) {
	id := s.ID()
	logger := ctxlog.FromContext(ctx).With("step", id)
	reg := e.plan.Component.Registry
	rec.Started = time.Now()

	if upstream, ok := e.failedUpstream(id); ok {
		e.transition(logger, id, model.StateError)
		rec.SkippedBecause = upstream
		rec.SetError(faults.Execution(faults.ErrUpstreamFailure, id, nil, "upstream step '%s' failed", upstream))
		e.finish(ctx, r, s, rec)
		return
	}
	if err := ctx.Err(); err != nil {
		e.transition(logger, id, model.StateError)
		rec.SetError(faults.Execution(faults.ErrCancelled, id, err, "run cancelled before the step started"))
		e.finish(ctx, r, s, rec)
		return
	}

	if err := reg.Transition(id, model.StateRunning); err != nil {
		logger.Error("Illegal step transition.", "error", err)
		rec.SetError(err)
		e.finish(ctx, r, s, rec)
		return
	}
	logger.Debug("Step running.")
	e.publish(ctx, r, events.ScopeStep, id, model.StateRunning, "")
	if e.opts.OnStep != nil {
		e.opts.OnStep(id)
	}

	logger.Info("▶️ Starting step", "kind", s.Kind)
	err := e.run(ctx, s, rec)
	rec.Duration = time.Since(rec.Started)
	if err != nil {
		logger.Error("Step failed.", "error", err)
		e.transition(logger, id, model.StateError)
		rec.SetError(err)
		e.finish(ctx, r, s, rec)
		return
	}
	e.transition(logger, id, model.StateSuccess)

	if e.opts.BaselineDir != "" && baseline.Enabled(s) {
		res := baseline.Compare(ctx, s, e.plan.StepDir(s), baseline.ReferenceDir(e.opts.BaselineDir, e.plan.Component.Name, s))
		rec.SetBaseline(res)
		if res.Err != nil {
			logger.Warn("Baseline comparison failed.", "error", res.Err)
		}
	}
	e.finish(ctx, r, s, rec)
}

// run checks cores, then invokes the runnable for the step's kind.
func (e *Executor) run(ctx context.Context, s *model.Step, rec *report.StepRecord) error {
	id := s.ID()
	if err := resources.Check(id, s.Bounds(), e.opts.Available); err != nil {
		return err
	}
	rec.Cores = resources.Grant(s.Bounds(), e.opts.Available)

	runnable, ok := e.handlers.Lookup(s.Kind)
	if !ok {
		return faults.Execution(faults.ErrNoRunnable, id, nil, "no runnable registered for kind '%s'", s.Kind)
	}
	cfg := s.Config
	if cfg == nil {
		cfg = e.plan.Component.Config
	}
	inv := &handlers.Invocation{
		Step:   s,
		Dir:    e.plan.StepDir(s),
		Cores:  rec.Cores,
		Config: cfg,
	}
	return runnable.Run(ctxlog.With(ctx, "step", id), inv)
}

func (e *Executor) failedUpstream(id string) (string, bool) {
	for _, dep := range e.plan.Predecessors(id) {
		if s, ok := e.plan.Step(dep); ok && s.State() == model.StateError {
			return dep, true
		}
	}
	return "", false
}

func (e *Executor) transition(logger *slog.Logger, id string, to model.State) {
	if err := e.plan.Component.Registry.Transition(id, to); err != nil {
		logger.Error("Illegal step transition.", "error", err)
	}
}

func (e *Executor) finish(ctx context.Context, r *report.Report, s *model.Step, rec *report.StepRecord) {
	rec.State = s.State()
	ctxlog.FromContext(ctx).Info("Step finished.", "step", s.ID(), "state", rec.State, "skipped", rec.Skipped(), "duration", rec.Duration)
	e.publish(ctx, r, events.ScopeStep, s.ID(), rec.State, rec.Error)
}

func (e *Executor) publish(ctx context.Context, r *report.Report, scope events.Scope, path string, state model.State, msg string) {
	e.opts.Sink.Publish(ctx, events.Event{
		RunID:   r.RunID,
		Scope:   scope,
		Path:    path,
		State:   string(state),
		Message: msg,
		Time:    time.Now(),
	})
}
