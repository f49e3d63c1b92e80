package integration_tests

import (
	"errors"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_FatalErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		files  map[string]string
		class  error
		reason error
	}{
		{
			name: "cycle between steps of one task",
			files: map[string]string{
				"defs/ocean.hcl": `
					component "ocean" {
					  step "t/a" {
					    kind    = "model"
					    outputs = ["a.nc"]
					    input {
					      filename        = "b.nc"
					      work_dir_target = "../b/b.nc"
					    }
					  }
					  step "t/b" {
					    kind    = "analysis"
					    outputs = ["b.nc"]
					    input {
					      filename        = "a.nc"
					      work_dir_target = "../a/a.nc"
					    }
					  }
					  task "t" { steps = ["t/a", "t/b"] }
					}
				`,
			},
			class:  faults.ErrDependency,
			reason: faults.ErrCycle,
		},
		{
			name: "input nobody produces",
			files: map[string]string{
				"defs/ocean.hcl": `
					component "ocean" {
					  step "mesh" {
					    kind    = "mesh"
					    outputs = ["mesh.nc"]
					  }
					  step "t/run" {
					    kind = "model"
					    input {
					      filename        = "culled.nc"
					      work_dir_target = "../../mesh/culled.nc"
					    }
					  }
					  task "t" { steps = ["t/run"] }
					}
				`,
			},
			class:  faults.ErrDependency,
			reason: faults.ErrMissingProducer,
		},
		{
			name: "cyclic interpolation in a user layer",
			files: map[string]string{
				"defs/ocean.hcl": `
					component "ocean" {
					  step "t/run" { kind = "model" }
					  task "t" { steps = ["t/run"] }
					}
				`,
				"user.yaml": "paths:\n  a: ${b}\n  b: ${a}\n",
			},
			class:  faults.ErrConfig,
			reason: faults.ErrCyclicInterpolation,
		},
		{
			name: "minimum above target",
			files: map[string]string{
				"defs/ocean.hcl": `
					component "ocean" {
					  step "t/run" {
					    kind      = "model"
					    ntasks    = 2
					    min_tasks = 4
					  }
					  task "t" { steps = ["t/run"] }
					}
				`,
			},
			class:  faults.ErrConfig,
			reason: faults.ErrResourceBounds,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			res := runIntegrationTest(t, tc.files, "", 4)

			// --- Assert ---
			require.Error(t, res.SetupErr)
			assert.True(t, errors.Is(res.SetupErr, tc.class), res.SetupErr.Error())
			assert.True(t, errors.Is(res.SetupErr, tc.reason), res.SetupErr.Error())
			assert.True(t, faults.IsSetupFatal(res.SetupErr))
			assert.Nil(t, res.Report, "nothing may run after a setup failure")
		})
	}
}
