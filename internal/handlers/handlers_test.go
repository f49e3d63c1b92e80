package handlers_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
	"github.com/specialistvlad/suitegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invocation(t *testing.T, res model.Resources, cores int, values map[string]string) *handlers.Invocation {
	t.Helper()
	step := model.NewStep(nodeid.MustParse("pkg/run"), model.KindModel)
	require.NoError(t, step.SetResources(res))

	layer := config.NewLayer("test", "test")
	for k, v := range values {
		section, option, _ := strings.Cut(k, ":")
		layer.Set(section, option, v)
	}
	return &handlers.Invocation{Step: step, Dir: t.TempDir(), Cores: cores, Config: config.New(layer)}
}

func TestHandlers_Register(t *testing.T) {
	t.Parallel()
	h := handlers.New()
	noop := handlers.RunnableFunc(func(context.Context, *handlers.Invocation) error { return nil })

	h.RegisterHandler(model.KindMesh, noop)
	h.RegisterHandler(model.KindAnalysis, noop)

	_, ok := h.Lookup(model.KindMesh)
	assert.True(t, ok)
	_, ok = h.Lookup(model.KindModel)
	assert.False(t, ok)
	assert.Equal(t, []model.Kind{model.KindAnalysis, model.KindMesh}, h.Kinds())
	assert.Panics(t, func() { h.RegisterHandler(model.KindMesh, noop) })
}

func TestLauncher_Placeholders(t *testing.T) {
	t.Parallel()
	res := model.Resources{NTasks: 4, MinTasks: 1, CPUsPerTask: 2, MinCPUsPerTask: 1, OpenMPThreads: 2}

	testCases := []struct {
		name     string
		cores    int
		launcher string
		want     []string
	}{
		{"full grant", 8, "mpirun, -n, {ntasks}, --cpus, {cpus_per_task}", []string{"mpirun", "-n", "4", "--cpus", "2"}},
		{"reduced grant", 5, "srun, -n, {ntasks}, -c, {cores}", []string{"srun", "-n", "2", "-c", "5"}},
		{"below one task", 1, "mpirun, -n, {ntasks}, --cpus, {cpus_per_task}", []string{"mpirun", "-n", "1", "--cpus", "1"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			inv := invocation(t, res, tc.cores, map[string]string{"parallel:launcher": tc.launcher})

			got, err := handlers.Launcher(inv)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplitCores(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		res   model.Resources
		cores int
		want  handlers.Split
	}{
		{
			name:  "full grant",
			res:   model.Resources{NTasks: 4, MinTasks: 1, CPUsPerTask: 2, MinCPUsPerTask: 1, OpenMPThreads: 2},
			cores: 8,
			want:  handlers.Split{NTasks: 4, CPUsPerTask: 2, Threads: 2},
		},
		{
			name:  "fewer tasks",
			res:   model.Resources{NTasks: 4, MinTasks: 1, CPUsPerTask: 2, MinCPUsPerTask: 1, OpenMPThreads: 2},
			cores: 5,
			want:  handlers.Split{NTasks: 2, CPUsPerTask: 2, Threads: 2},
		},
		{
			name:  "narrower task",
			res:   model.Resources{NTasks: 4, MinTasks: 1, CPUsPerTask: 4, MinCPUsPerTask: 2, OpenMPThreads: 4},
			cores: 3,
			want:  handlers.Split{NTasks: 1, CPUsPerTask: 3, Threads: 3},
		},
		{
			name:  "width floor",
			res:   model.Resources{NTasks: 1, MinTasks: 1, CPUsPerTask: 4, MinCPUsPerTask: 2, OpenMPThreads: 1},
			cores: 1,
			want:  handlers.Split{NTasks: 1, CPUsPerTask: 2, Threads: 1},
		},
		{
			name:  "threads fit one task",
			res:   model.Resources{NTasks: 2, MinTasks: 1, CPUsPerTask: 1, MinCPUsPerTask: 1, OpenMPThreads: 4},
			cores: 2,
			want:  handlers.Split{NTasks: 2, CPUsPerTask: 1, Threads: 1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			inv := invocation(t, tc.res, tc.cores, nil)

			assert.Equal(t, tc.want, handlers.SplitCores(inv))
		})
	}
}

func TestRunCommand_ThreadsFollowTheGrant(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.LogContext(t)
	res := model.Resources{NTasks: 1, MinTasks: 1, CPUsPerTask: 4, MinCPUsPerTask: 1, OpenMPThreads: 4}
	inv := invocation(t, res, 2, nil)

	err := handlers.RunCommand(ctx, inv, []string{"sh", "-c", `echo "$OMP_NUM_THREADS"`})

	require.NoError(t, err)
	log, err := os.ReadFile(filepath.Join(inv.Dir, "step.log"))
	require.NoError(t, err)
	assert.Equal(t, "2\n", string(log))
}

func TestLauncher_Unset(t *testing.T) {
	t.Parallel()
	inv := invocation(t, model.DefaultResources(), 1, nil)

	got, err := handlers.Launcher(inv)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunCommand_EnvironmentAndLog(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	ctx, _ := testutil.LogContext(t)
	res := model.DefaultResources()
	res.OpenMPThreads = 3
	inv := invocation(t, res, 6, nil)

	// --- Act ---
	err := handlers.RunCommand(ctx, inv, []string{"sh", "-c", `echo "threads=$OMP_NUM_THREADS cores=$SUITEGRID_CORES"; pwd > where.txt`})

	// --- Assert ---
	require.NoError(t, err)
	log, err := os.ReadFile(filepath.Join(inv.Dir, "step.log"))
	require.NoError(t, err)
	assert.Equal(t, "threads=3 cores=6\n", string(log))

	where, err := os.ReadFile(filepath.Join(inv.Dir, "where.txt"))
	require.NoError(t, err)
	wantDir, err := filepath.EvalSymlinks(inv.Dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(strings.TrimSpace(string(where)))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestRunCommand_CustomLogAndThreadsVariable(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.LogContext(t)
	inv := invocation(t, model.DefaultResources(), 1, map[string]string{
		"execute:log_file":          "run.out",
		"parallel:threads_variable": "MY_THREADS",
	})

	err := handlers.RunCommand(ctx, inv, []string{"sh", "-c", `echo "$MY_THREADS"`})

	require.NoError(t, err)
	log, err := os.ReadFile(filepath.Join(inv.Dir, "run.out"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(log))
}

func TestRunCommand_Failures(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		argv []string
	}{
		{"non-zero exit", []string{"sh", "-c", "exit 3"}},
		{"missing binary", []string{"suitegrid-no-such-binary"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.LogContext(t)
			inv := invocation(t, model.DefaultResources(), 1, nil)

			err := handlers.RunCommand(ctx, inv, tc.argv)

			require.Error(t, err)
			assert.True(t, errors.Is(err, faults.ErrExecution))
			assert.True(t, errors.Is(err, faults.ErrNonZeroExit))
		})
	}
}

func TestRunCommand_CancelledIsNotAnExitCode(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.LogContext(t)
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	inv := invocation(t, model.DefaultResources(), 1, nil)

	err := handlers.RunCommand(cancelled, inv, []string{"sleep", "5"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrCancelled))
	assert.False(t, errors.Is(err, faults.ErrNonZeroExit))
}

func TestRunCommand_EmptyIsNoop(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.LogContext(t)
	inv := invocation(t, model.DefaultResources(), 1, nil)

	require.NoError(t, handlers.RunCommand(ctx, inv, nil))
	assert.NoFileExists(t, filepath.Join(inv.Dir, "step.log"))
}

func TestCheckOutputs(t *testing.T) {
	t.Parallel()
	inv := invocation(t, model.DefaultResources(), 1, nil)
	inv.Step.Outputs = []string{"mesh/grid.dat"}

	err := handlers.CheckOutputs(inv)
	assert.True(t, errors.Is(err, faults.ErrExecution))
	assert.True(t, errors.Is(err, faults.ErrMissingOutput))

	require.NoError(t, os.MkdirAll(filepath.Join(inv.Dir, "mesh"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inv.Dir, "mesh", "grid.dat"), nil, 0o644))
	assert.NoError(t, handlers.CheckOutputs(inv))
}
