package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepSpec struct {
	path    string
	outputs []string
	refs    []string
}

// fixture declares steps in the component registry and tasks using them.
func fixture(t *testing.T, steps []stepSpec, tasks map[string][]string, taskOrder []string) (*model.Component, []*model.Task) {
	t.Helper()

	c := model.NewComponent("ocean")
	for _, s := range steps {
		step := model.NewStep(nodeid.MustParse(s.path), model.KindModel)
		step.Outputs = s.outputs
		for i, ref := range s.refs {
			step.Inputs = append(step.Inputs, model.Input{Filename: string(rune('a' + i)), WorkDirTarget: ref})
		}
		c.Registry.Register(step)
	}

	var selected []*model.Task
	for _, name := range taskOrder {
		task, err := c.AddTask(nodeid.MustParse(name))
		require.NoError(t, err)
		for _, p := range tasks[name] {
			s, ok := c.Registry.Lookup(p)
			require.True(t, ok, p)
			task.UseStep(s)
		}
		selected = append(selected, task)
	}
	return c, selected
}

func TestBuild_SharedMesh(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c, tasks := fixture(t,
		[]stepSpec{
			{path: "mesh", outputs: []string{"mesh.nc"}},
			{path: "alpha/forward", refs: []string{"../../mesh/mesh.nc"}},
			{path: "beta/forward", refs: []string{"../../mesh/mesh.nc"}},
		},
		map[string][]string{
			"alpha": {"mesh", "alpha/forward"},
			"beta":  {"mesh", "beta/forward"},
		},
		[]string{"alpha", "beta"},
	)

	// --- Act ---
	p, err := Build(context.Background(), c, tasks)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"mesh", "alpha/forward", "beta/forward"}, p.Order)
	assert.Equal(t, []string{"mesh"}, p.Predecessors("beta/forward"))
	assert.Empty(t, p.Predecessors("mesh"))
}

func TestBuild_DiscoversTransitiveProducers(t *testing.T) {
	t.Parallel()

	c, tasks := fixture(t,
		[]stepSpec{
			{path: "topo", outputs: []string{"topo.nc"}},
			{path: "mesh", outputs: []string{"out/mesh.nc"}, refs: []string{"../topo/topo.nc"}},
			{path: "run/forward", refs: []string{"../../mesh/out/mesh.nc"}},
		},
		map[string][]string{"run": {"run/forward"}},
		[]string{"run"},
	)

	p, err := Build(context.Background(), c, tasks)

	require.NoError(t, err)
	assert.Equal(t, []string{"topo", "mesh", "run/forward"}, p.Order)
}

func TestBuild_SelectionOrderBreaksTies(t *testing.T) {
	t.Parallel()

	steps := []stepSpec{{path: "a/one"}, {path: "b/one"}, {path: "c/one"}}
	tasks := map[string][]string{"a": {"a/one"}, "b": {"b/one"}, "c": {"c/one"}}

	c, selected := fixture(t, steps, tasks, []string{"c", "a", "b"})
	first, err := Build(context.Background(), c, selected)
	require.NoError(t, err)
	assert.Equal(t, []string{"c/one", "a/one", "b/one"}, first.Order)

	for i := 0; i < 5; i++ {
		again, err := Build(context.Background(), c, selected)
		require.NoError(t, err)
		assert.Equal(t, first.Order, again.Order)
	}
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		steps       []stepSpec
		tasks       map[string][]string
		order       []string
		reason      error
		errContains string
	}{
		{
			name:        "no producer step",
			steps:       []stepSpec{{path: "run", refs: []string{"../mesh/mesh.nc"}}},
			tasks:       map[string][]string{"t": {"run"}},
			order:       []string{"t"},
			reason:      faults.ErrMissingProducer,
			errContains: "no step produces it",
		},
		{
			name: "undeclared output",
			steps: []stepSpec{
				{path: "mesh", outputs: []string{"mesh.nc"}},
				{path: "run", refs: []string{"../mesh/other.nc"}},
			},
			tasks:       map[string][]string{"t": {"run"}},
			order:       []string{"t"},
			reason:      faults.ErrMissingProducer,
			errContains: "does not declare as an output",
		},
		{
			name: "cycle through references",
			steps: []stepSpec{
				{path: "a", outputs: []string{"x"}, refs: []string{"../b/y"}},
				{path: "b", outputs: []string{"y"}, refs: []string{"../a/x"}},
			},
			tasks:       map[string][]string{"t": {"a"}},
			order:       []string{"t"},
			reason:      faults.ErrCycle,
			errContains: "a -> b -> a",
		},
		{
			name:        "conflicting task orders",
			steps:       []stepSpec{{path: "a"}, {path: "b"}},
			tasks:       map[string][]string{"t1": {"a", "b"}, "t2": {"b", "a"}},
			order:       []string{"t1", "t2"},
			reason:      faults.ErrCycle,
			errContains: "a -> b -> a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, tasks := fixture(t, tc.steps, tc.tasks, tc.order)

			_, err := Build(context.Background(), c, tasks)

			require.Error(t, err)
			assert.True(t, errors.Is(err, faults.ErrDependency))
			assert.True(t, errors.Is(err, tc.reason), "got %v", err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}
