package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/dag"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
)

// Save writes every descriptor of a materialized plan and freezes its steps.
func Save(ctx context.Context, p *plan.Plan) error {
	logger := ctxlog.FromContext(ctx)
	if p.WorkDir == "" {
		return errors.New("plan has no work directory; materialize it before saving")
	}

	componentCfg, err := resolve(p.Component.Config)
	if err != nil {
		return err
	}

	steps, err := p.Steps()
	if err != nil {
		return err
	}
	for _, s := range steps {
		cfg := componentCfg
		if s.Config != nil {
			if cfg, err = resolve(s.Config); err != nil {
				return err
			}
		}
		rec := StepRecord{
			Component:     p.Component.Name,
			Path:          s.ID(),
			Kind:          s.Kind,
			Command:       nonNil(s.Command),
			Inputs:        s.Inputs,
			Outputs:       nonNil(s.Outputs),
			Baseline:      nonNil(s.Baseline),
			ConfigSection: s.ConfigSection,
			Resources:     s.Resources(),
			Bounds:        s.Bounds(),
			Predecessors:  nonNil(p.Predecessors(s.ID())),
			Config:        cfg,
			Subtree:       subtree(p, s.ID()),
		}
		if rec.Inputs == nil {
			rec.Inputs = []model.Input{}
		}
		if err := writeDescriptor(filepath.Join(p.StepDir(s), StepFile), KindStep, rec); err != nil {
			return err
		}
	}

	taskPaths := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		refs := t.StepRefs()
		ids := make([]string, len(refs))
		for i, ref := range refs {
			ids[i] = ref.Path
		}
		cfg := t.Resolved()
		if cfg == nil {
			cfg = config.Resolved{}
		}
		rec := TaskRecord{
			Component: p.Component.Name,
			Path:      t.ID(),
			Steps:     ids,
			Config:    cfg,
			Bounds:    t.Bounds,
			Subtree:   subtree(p, ids...),
		}
		if err := writeDescriptor(filepath.Join(p.TaskDir(t), TaskFile), KindTask, rec); err != nil {
			return err
		}
		taskPaths = append(taskPaths, t.ID())
	}

	rec := PlanRecord{
		Component: p.Component.Name,
		Suite:     p.Suite,
		Tasks:     taskPaths,
		Config:    componentCfg,
		Bounds:    p.Bounds,
		Subtree:   Subtree{Order: nonNil(p.Order), Edges: nonNilEdges(p.Graph.Edges())},
	}
	if err := writeDescriptor(filepath.Join(p.WorkDir, PlanFile), KindPlan, rec); err != nil {
		return err
	}

	for _, s := range steps {
		s.Freeze()
	}
	logger.Debug("Checkpoint saved.", "work_dir", p.WorkDir, "steps", len(steps), "tasks", len(p.Tasks))
	return nil
}

func resolve(cfg *config.Config) (config.Resolved, error) {
	if cfg == nil {
		return config.Resolved{}, nil
	}
	r, err := cfg.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot config: %w", err)
	}
	return r, nil
}

// subtree collects roots and all their ancestors, keeping plan order.
func subtree(p *plan.Plan, roots ...string) Subtree {
	keep := make(map[string]struct{})
	var visit func(id string)
	visit = func(id string) {
		if _, ok := keep[id]; ok {
			return
		}
		keep[id] = struct{}{}
		for _, dep := range p.Predecessors(id) {
			visit(dep)
		}
	}
	for _, r := range roots {
		visit(r)
	}

	st := Subtree{Order: []string{}, Edges: []dag.Edge{}}
	for _, id := range p.Order {
		if _, ok := keep[id]; ok {
			st.Order = append(st.Order, id)
		}
	}
	for _, e := range p.Graph.Edges() {
		_, from := keep[e.From]
		_, to := keep[e.To]
		if from && to {
			st.Edges = append(st.Edges, e)
		}
	}
	return st
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilEdges(e []dag.Edge) []dag.Edge {
	if e == nil {
		return []dag.Edge{}
	}
	return e
}
