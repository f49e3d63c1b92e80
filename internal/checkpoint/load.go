package checkpoint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/dag"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
	"github.com/specialistvlad/suitegrid/internal/plan"
)

// Load reconstructs a plan from a work directory (plan.json), a task
// directory (task.json) or a step directory (step.json).
func Load(ctx context.Context, path string) (*plan.Plan, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	// A task's entry for a shared step is a link; load the step where it lives.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	var p *plan.Plan
	switch {
	case exists(filepath.Join(abs, PlanFile)):
		p, err = loadPlan(abs)
	case exists(filepath.Join(abs, TaskFile)):
		p, err = loadTask(abs)
	case exists(filepath.Join(abs, StepFile)):
		p, err = loadStep(abs)
	default:
		return nil, fmt.Errorf("no checkpoint found in %s (expected %s, %s or %s)", abs, PlanFile, TaskFile, StepFile)
	}
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Checkpoint loaded.", "path", abs, "component", p.Component.Name, "steps", len(p.Order), "tasks", len(p.Tasks))
	return p, nil
}

func loadPlan(workDir string) (*plan.Plan, error) {
	var rec PlanRecord
	if err := readDescriptor(filepath.Join(workDir, PlanFile), KindPlan, &rec); err != nil {
		return nil, err
	}
	componentDir := filepath.Join(workDir, rec.Component)
	p, err := rebuild(rec.Component, workDir, rec.Config, rec.Subtree)
	if err != nil {
		return nil, err
	}
	p.Suite = rec.Suite
	p.Bounds = rec.Bounds

	for _, tp := range rec.Tasks {
		taskPath, err := nodeid.Parse(tp)
		if err != nil {
			return nil, fmt.Errorf("plan checkpoint lists invalid task %q: %w", tp, err)
		}
		var trec TaskRecord
		if err := readDescriptor(filepath.Join(taskPath.FromSlash(componentDir), TaskFile), KindTask, &trec); err != nil {
			return nil, err
		}
		if err := attachTask(p, trec); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func loadTask(taskDir string) (*plan.Plan, error) {
	var rec TaskRecord
	if err := readDescriptor(filepath.Join(taskDir, TaskFile), KindTask, &rec); err != nil {
		return nil, err
	}
	workDir, err := workDirOf(taskDir, rec.Component, rec.Path)
	if err != nil {
		return nil, err
	}
	p, err := rebuild(rec.Component, workDir, rec.Config, rec.Subtree)
	if err != nil {
		return nil, err
	}
	if err := attachTask(p, rec); err != nil {
		return nil, err
	}
	p.Bounds = rec.Bounds
	return p, nil
}

func loadStep(stepDir string) (*plan.Plan, error) {
	var rec StepRecord
	if err := readDescriptor(filepath.Join(stepDir, StepFile), KindStep, &rec); err != nil {
		return nil, err
	}
	workDir, err := workDirOf(stepDir, rec.Component, rec.Path)
	if err != nil {
		return nil, err
	}
	p, err := rebuild(rec.Component, workDir, rec.Config, rec.Subtree)
	if err != nil {
		return nil, err
	}
	p.Bounds = rec.Bounds
	return p, nil
}

// rebuild creates a fresh component and registry holding the frozen steps
// of st, and a graph with exactly the recorded order and edges.
func rebuild(component, workDir string, componentCfg config.Resolved, st Subtree) (*plan.Plan, error) {
	c := model.NewComponent(component)
	c.Config = config.FromResolved(componentCfg)
	componentDir := filepath.Join(workDir, component)

	g := dag.New()
	for _, id := range st.Order {
		stepPath, err := nodeid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("checkpoint lists invalid step %q: %w", id, err)
		}
		var rec StepRecord
		if err := readDescriptor(filepath.Join(stepPath.FromSlash(componentDir), StepFile), KindStep, &rec); err != nil {
			return nil, err
		}
		s, err := stepFromRecord(stepPath, rec)
		if err != nil {
			return nil, err
		}
		c.Registry.Register(s)
		g.AddNode(id)
	}
	for _, e := range st.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("checkpoint edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	return &plan.Plan{
		Component: c,
		Graph:     g,
		Order:     append([]string{}, st.Order...),
		WorkDir:   workDir,
	}, nil
}

func stepFromRecord(path nodeid.Path, rec StepRecord) (*model.Step, error) {
	kind, err := model.ParseKind(string(rec.Kind))
	if err != nil {
		return nil, fmt.Errorf("step checkpoint '%s': %w", rec.Path, err)
	}
	s := model.NewStep(path, kind)
	s.Command = rec.Command
	s.Inputs = rec.Inputs
	s.Outputs = rec.Outputs
	s.Baseline = rec.Baseline
	s.ConfigSection = rec.ConfigSection
	s.Config = config.FromResolved(rec.Config)
	if err := s.SetResources(rec.Resources); err != nil {
		return nil, err
	}
	if err := s.SetBounds(rec.Bounds); err != nil {
		return nil, err
	}
	s.Freeze()
	return s, nil
}

func attachTask(p *plan.Plan, rec TaskRecord) error {
	taskPath, err := nodeid.Parse(rec.Path)
	if err != nil {
		return fmt.Errorf("task checkpoint has invalid path %q: %w", rec.Path, err)
	}
	t, err := p.Component.AddTask(taskPath)
	if err != nil {
		return err
	}
	for _, id := range rec.Steps {
		s, ok := p.Component.Registry.Lookup(id)
		if !ok {
			return fmt.Errorf("task checkpoint '%s' references step '%s' missing from the plan", rec.Path, id)
		}
		t.UseStep(s)
	}
	t.SetConfig(config.FromResolved(rec.Config), rec.Config)
	t.Bounds = rec.Bounds
	p.Tasks = append(p.Tasks, t)
	return nil
}

// workDirOf walks up from an entity directory to the work directory:
// <work>/<component>/<entity path>.
func workDirOf(dir, component, entityPath string) (string, error) {
	p, err := nodeid.Parse(entityPath)
	if err != nil {
		return "", fmt.Errorf("checkpoint has invalid path %q: %w", entityPath, err)
	}
	componentDir := dir
	for range p.Segments {
		componentDir = filepath.Dir(componentDir)
	}
	if filepath.Base(componentDir) != component {
		return "", fmt.Errorf("checkpoint in %s belongs to component %q but is not located below a %q directory", dir, component, component)
	}
	return filepath.Dir(componentDir), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
