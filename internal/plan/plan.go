// Package plan holds the execution plan: the selected tasks of one
// component, the dependency graph over their steps and the frozen linear
// order the runner follows.
package plan

import (
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/suitegrid/internal/dag"
	"github.com/specialistvlad/suitegrid/internal/model"
)

// Plan is produced by the scheduler during setup and reloaded from a
// checkpoint at run time.
type Plan struct {
	Component *model.Component
	// Suite is the selected suite name, empty for ad-hoc task selections.
	Suite string
	// Tasks are the selected tasks in selection order.
	Tasks []*model.Task
	Graph *dag.Graph
	// Order is the linear execution order of step IDs.
	Order []string
	// Bounds is the suite aggregate.
	Bounds model.Bounds
	// WorkDir is the root of the materialized work area, set by the
	// materializer or by the checkpoint loader.
	WorkDir string
}

// Name identifies the plan in logs and reports.
func (p *Plan) Name() string {
	if p.Suite != "" {
		return p.Suite
	}
	return "default"
}

// Step looks up a step of the plan.
func (p *Plan) Step(id string) (*model.Step, bool) {
	if !p.Graph.HasNode(id) {
		return nil, false
	}
	return p.Component.Registry.Lookup(id)
}

// Steps resolves Order to step instances.
func (p *Plan) Steps() ([]*model.Step, error) {
	out := make([]*model.Step, 0, len(p.Order))
	for _, id := range p.Order {
		s, ok := p.Step(id)
		if !ok {
			return nil, fmt.Errorf("plan order references unknown step '%s'", id)
		}
		out = append(out, s)
	}
	return out, nil
}

// Predecessors returns the direct dependencies of a step.
func (p *Plan) Predecessors(id string) []string {
	deps, err := p.Graph.Dependencies(id)
	if err != nil {
		return nil
	}
	return deps
}

// Task finds a selected task by path.
func (p *Plan) Task(path string) (*model.Task, bool) {
	for _, t := range p.Tasks {
		if t.ID() == path {
			return t, true
		}
	}
	return nil, false
}

// ComponentDir is <work>/<component>.
func (p *Plan) ComponentDir() string {
	return filepath.Join(p.WorkDir, p.Component.Name)
}

// StepDir is the single directory a step materializes into.
func (p *Plan) StepDir(s *model.Step) string {
	return s.Path.FromSlash(p.ComponentDir())
}

// TaskDir is the directory of a task.
func (p *Plan) TaskDir(t *model.Task) string {
	return t.Path.FromSlash(p.ComponentDir())
}
