package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/dag"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
)

// Build schedules the given tasks of component c.
func Build(ctx context.Context, c *model.Component, tasks []*model.Task) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Scheduling tasks.", "component", c.Name, "tasks", len(tasks))

	g := dag.New()
	taskSteps := make([][]*model.Step, len(tasks))
	for i, t := range tasks {
		steps, err := t.Steps()
		if err != nil {
			return nil, faults.Dependency(faults.ErrMissingProducer, t.ID(), "%v", err)
		}
		taskSteps[i] = steps
		for _, s := range steps {
			g.AddNode(s.ID())
		}
	}

	// Discover producers. The node list grows while it is walked, so
	// producers of producers are picked up too.
	var implicit []dag.Edge
	for i := 0; i < g.Len(); i++ {
		consumerID := g.Nodes()[i]
		consumer, _ := c.Registry.Lookup(consumerID)
		for _, in := range consumer.Inputs {
			if !in.IsReference() {
				continue
			}
			producer, err := findProducer(c.Registry, consumer, in)
			if err != nil {
				return nil, err
			}
			g.AddNode(producer.ID())
			implicit = append(implicit, dag.Edge{From: producer.ID(), To: consumer.ID()})
		}
	}

	for _, steps := range taskSteps {
		for i := 1; i < len(steps); i++ {
			if err := g.AddEdge(steps[i-1].ID(), steps[i].ID()); err != nil {
				return nil, faults.Dependency(faults.ErrCycle, steps[i].ID(), "%v", err)
			}
		}
	}
	for _, e := range implicit {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, faults.Dependency(faults.ErrCycle, e.To, "step consumes its own output: %v", err)
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) && len(cycle.Members) > 0 {
			return nil, faults.Dependency(faults.ErrCycle, cycle.Members[0], "steps form a cycle: %s", strings.Join(cycle.Members, " -> "))
		}
		return nil, faults.Dependency(faults.ErrCycle, c.Name, "%v", err)
	}

	p := &plan.Plan{Component: c, Tasks: tasks, Graph: g, Order: order}
	logger.Debug("Scheduled plan.", "component", c.Name, "steps", len(order), "edges", len(g.Edges()))
	return p, nil
}

// findProducer resolves a reference input to the registered step whose
// directory contains the referenced file. The deepest matching step wins and
// the remainder must be one of its declared outputs.
func findProducer(reg *model.Registry, consumer *model.Step, in model.Input) (*model.Step, error) {
	file, err := model.ResolveReference(consumer.Path, in.WorkDirTarget)
	if err != nil {
		return nil, faults.Dependency(faults.ErrMissingProducer, consumer.ID(), "input %q: %v", in.Filename, err)
	}

	var producer *model.Step
	for _, s := range reg.Steps() {
		if s.Path.Equal(file) || !file.HasPrefix(s.Path) {
			continue
		}
		if producer == nil || len(s.Path.Segments) > len(producer.Path.Segments) {
			producer = s
		}
	}
	if producer == nil {
		return nil, faults.Dependency(faults.ErrMissingProducer, consumer.ID(),
			"input %q references '%s' but no step produces it", in.Filename, file)
	}

	rel, _ := file.Rel(producer.Path)
	if !producer.HasOutput(rel.String()) {
		return nil, faults.Dependency(faults.ErrMissingProducer, consumer.ID(),
			"input %q references '%s' which step '%s' does not declare as an output (outputs: %s)",
			in.Filename, rel, producer.ID(), describe(producer.Outputs))
	}
	return producer, nil
}

func describe(outputs []string) string {
	if len(outputs) == 0 {
		return "none"
	}
	return fmt.Sprintf("%q", outputs)
}
