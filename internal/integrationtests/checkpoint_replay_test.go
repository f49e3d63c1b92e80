package integration_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/app"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replayHCL = `
	component "ocean" {
	  step "mesh" {
	    kind    = "mesh"
	    command = ["sh", "-c", "echo grid > mesh.nc"]
	    outputs = ["mesh.nc"]
	  }
	  step "alpha/forward" {
	    kind    = "model"
	    command = ["sh", "-c", "test -f mesh.nc"]
	    input {
	      filename        = "mesh.nc"
	      work_dir_target = "../../mesh/mesh.nc"
	    }
	  }
	  task "alpha" { steps = ["mesh", "alpha/forward"] }
	}
`

func setupOnly(t *testing.T) string {
	t.Helper()
	res := runIntegrationTest(t, map[string]string{"defs/ocean.hcl": replayHCL}, "", 1)
	requireRan(t, res)
	return res.Plan.WorkDir
}

func TestRun_FromStepDirectoryRunsItsSubtree(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	work := setupOnly(t)
	fake := testutil.NewFakeRunnable()
	a, _ := app.SetupAppTest(t, &app.Config{
		Command:        app.CommandRun,
		CheckpointPath: filepath.Join(work, "ocean", "alpha", "forward"),
		Cores:          1,
	}, &testutil.FakeModule{Runnable: fake})

	// --- Act ---
	r, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"mesh", "alpha/forward"}, fake.Order())
	assert.Equal(t, model.StateSuccess, r.State)
}

func TestRun_EditedCheckpointIsStale(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	work := setupOnly(t)
	stepFile := filepath.Join(work, "ocean", "mesh", "step.json")
	data, err := os.ReadFile(stepFile)
	require.NoError(t, err)
	edited := strings.Replace(string(data), `"ntasks": 1`, `"ntasks": 64`, 1)
	require.NotEqual(t, string(data), edited)
	require.NoError(t, os.WriteFile(stepFile, []byte(edited), 0o644))

	a, _ := app.SetupAppTest(t, &app.Config{
		Command:        app.CommandRun,
		CheckpointPath: filepath.Join(work, "ocean", "mesh"),
		Cores:          1,
	}, &testutil.FakeModule{Runnable: testutil.NewFakeRunnable()})

	// --- Act ---
	_, err = a.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrStaleCheckpoint))
	assert.True(t, errors.Is(err, faults.ErrDigest))
}
