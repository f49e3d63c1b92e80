// Package resources computes the core requirements of steps and their peaks
// over tasks and suites, and checks them against what a machine offers.
package resources

import (
	"context"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
)

// StepBounds derives (target, min) cores from a resource request.
func StepBounds(r model.Resources) (model.Bounds, error) {
	fields := []struct {
		name  string
		value int
	}{
		{"ntasks", r.NTasks},
		{"min_tasks", r.MinTasks},
		{"cpus_per_task", r.CPUsPerTask},
		{"min_cpus_per_task", r.MinCPUsPerTask},
		{"openmp_threads", r.OpenMPThreads},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return model.Bounds{}, faults.Config(faults.ErrResourceBounds, "", "%s must be positive, got %d", f.name, f.value)
		}
	}

	b := model.Bounds{
		TargetCores: r.NTasks * r.CPUsPerTask,
		MinCores:    r.MinTasks * r.MinCPUsPerTask,
	}
	if b.MinCores > b.TargetCores {
		return model.Bounds{}, faults.Config(faults.ErrResourceBounds, "",
			"min cores %d (min_tasks=%d * min_cpus_per_task=%d) exceed target cores %d (ntasks=%d * cpus_per_task=%d)",
			b.MinCores, r.MinTasks, r.MinCPUsPerTask, b.TargetCores, r.NTasks, r.CPUsPerTask)
	}
	return b, nil
}

// Negotiate computes and records bounds for every step of the plan, each
// selected task and the suite. Aggregates are peaks, not sums.
func Negotiate(ctx context.Context, p *plan.Plan) error {
	logger := ctxlog.FromContext(ctx)

	steps, err := p.Steps()
	if err != nil {
		return err
	}
	for _, s := range steps {
		b, err := StepBounds(s.Resources())
		if err != nil {
			if fe, ok := err.(*faults.Error); ok {
				fe.Path = s.ID()
			}
			return err
		}
		if err := s.SetBounds(b); err != nil {
			return faults.Config(faults.ErrResourceBounds, s.ID(), "%v", err)
		}
		logger.Debug("Negotiated step bounds.", "step", s.ID(), "target_cores", b.TargetCores, "min_cores", b.MinCores)
	}

	var suite model.Bounds
	for _, t := range p.Tasks {
		ts, err := t.Steps()
		if err != nil {
			return err
		}
		t.Bounds = Aggregate(stepBounds(ts)...)
		suite = suite.Max(t.Bounds)
		logger.Debug("Negotiated task bounds.", "task", t.ID(), "target_cores", t.Bounds.TargetCores, "min_cores", t.Bounds.MinCores)
	}
	p.Bounds = suite
	return nil
}

// Aggregate returns the element-wise maximum of bs.
func Aggregate(bs ...model.Bounds) model.Bounds {
	var out model.Bounds
	for _, b := range bs {
		out = out.Max(b)
	}
	return out
}

func stepBounds(steps []*model.Step) []model.Bounds {
	out := make([]model.Bounds, len(steps))
	for i, s := range steps {
		out[i] = s.Bounds()
	}
	return out
}

// Check fails with a ResourceError when fewer than the minimum cores are
// available. The error is not retryable.
func Check(path string, b model.Bounds, available int) error {
	if available < b.MinCores {
		return faults.Resource(faults.ErrInsufficientCores, path,
			"needs at least %d cores, %d available", b.MinCores, available)
	}
	return nil
}

// Grant is the number of cores a step runs with.
func Grant(b model.Bounds, available int) int {
	return min(b.TargetCores, available)
}
