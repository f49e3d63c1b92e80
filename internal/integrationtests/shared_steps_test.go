package integration_tests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedMesh_RunsOnceAcrossTasks(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The mesh step appends to a counter file outside the work area, so a
	// second execution would show up as a second line.
	counter := filepath.Join(t.TempDir(), "mesh-runs")
	files := map[string]string{
		"defs/ocean.hcl": `
			component "ocean" {
			  step "mesh" {
			    kind    = "mesh"
			    command = ["sh", "-c", "echo run >> ` + counter + `; echo grid > mesh.nc"]
			    outputs = ["mesh.nc"]
			  }
			  step "alpha/forward" {
			    kind    = "model"
			    command = ["sh", "-c", "cat mesh.nc"]
			    input {
			      filename        = "mesh.nc"
			      work_dir_target = "../../mesh/mesh.nc"
			    }
			  }
			  step "beta/forward" {
			    kind    = "model"
			    command = ["sh", "-c", "cat mesh.nc"]
			    input {
			      filename        = "mesh.nc"
			      work_dir_target = "../../mesh/mesh.nc"
			    }
			  }
			  task "alpha" { steps = ["mesh", "alpha/forward"] }
			  task "beta"  { steps = ["mesh", "beta/forward"] }
			  suite "nightly" { tasks = ["alpha", "beta"] }
			}
		`,
	}

	// --- Act ---
	res := runIntegrationTest(t, files, "nightly", 2)

	// --- Assert ---
	requireRan(t, res)
	assert.Equal(t, model.StateSuccess, res.Report.State)

	runs, err := os.ReadFile(counter)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(runs), "run"), "the shared mesh must run exactly once")
	assert.Equal(t, 1, testutil.CountStepLogs(res.Logs, "mesh", "Step running."))

	// One real mesh directory and one link per task.
	ocean := filepath.Join(res.Plan.WorkDir, "ocean")
	info, err := os.Lstat(filepath.Join(ocean, "mesh"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	for _, task := range []string{"alpha", "beta"} {
		info, err := os.Lstat(filepath.Join(ocean, task, "mesh"))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink, "%s/mesh should be a link", task)

		log, err := os.ReadFile(filepath.Join(ocean, task, "forward", "step.log"))
		require.NoError(t, err)
		assert.Equal(t, "grid\n", string(log))
	}
}

func TestFailureInOneTask_OthersComplete(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"defs/ocean.hcl": `
			component "ocean" {
			  step "one/run" {
			    kind    = "model"
			    command = ["true"]
			  }
			  step "two/run" {
			    kind    = "model"
			    command = ["sh", "-c", "exit 3"]
			  }
			  step "two/check" {
			    kind    = "analysis"
			    command = ["true"]
			  }
			  step "three/run" {
			    kind    = "model"
			    command = ["true"]
			  }
			  task "one"   { steps = ["one/run"] }
			  task "two"   { steps = ["two/run", "two/check"] }
			  task "three" { steps = ["three/run"] }
			  suite "all" { tasks = ["one", "two", "three"] }
			}
		`,
	}

	// --- Act ---
	res := runIntegrationTest(t, files, "all", 1)

	// --- Assert ---
	requireRan(t, res)
	r := res.Report
	assert.Equal(t, model.StateError, r.State)
	require.Len(t, r.Tasks, 3)
	assert.Equal(t, model.StateSuccess, r.Tasks[0].State)
	assert.Equal(t, model.StateError, r.Tasks[1].State)
	assert.Equal(t, model.StateSuccess, r.Tasks[2].State)

	check, ok := r.Lookup("two/check")
	require.True(t, ok)
	assert.Equal(t, "two/run", check.SkippedBecause)
	testutil.AssertStepRan(t, res.Logs, "three/run")
}
