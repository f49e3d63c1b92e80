package integration_tests

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/app"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/plan"
	"github.com/specialistvlad/suitegrid/internal/report"
	"github.com/specialistvlad/suitegrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// noLauncher keeps model steps off mpirun.
const noLauncher = "parallel:\n  launcher: \"\"\n"

// Result holds the outcome of a setup and an optional run.
type Result struct {
	Plan     *plan.Plan
	Report   *report.Report
	WorkDir  string
	Logs     *testutil.SafeBuffer
	SetupErr error
	RunErr   error
}

// runIntegrationTest writes files, runs setup over defs/ with the given
// suite, and, when setup succeeds, runs the whole work directory.
func runIntegrationTest(t *testing.T, files map[string]string, suite string, cores int, modules ...handlers.Module) *Result {
	t.Helper()

	if _, ok := files["user.yaml"]; !ok {
		files["user.yaml"] = noLauncher
	}
	root := testutil.WriteFiles(t, files)
	work := filepath.Join(root, "work")

	setupApp, setupLogs := app.SetupAppTest(t, &app.Config{
		Command:         app.CommandSetup,
		DefinitionsPath: filepath.Join(root, "defs"),
		ConfigFiles:     []string{filepath.Join(root, "user.yaml")},
		Suite:           suite,
		WorkDir:         work,
	}, modules...)
	res := &Result{WorkDir: work, Logs: setupLogs}
	res.Plan, res.SetupErr = setupApp.Setup(context.Background())
	if res.SetupErr != nil {
		return res
	}

	runApp, runLogs := app.SetupAppTest(t, &app.Config{
		Command:        app.CommandRun,
		CheckpointPath: work,
		Cores:          cores,
	}, modules...)
	res.Logs = runLogs
	res.Report, res.RunErr = runApp.Run(context.Background())
	return res
}

func requireRan(t *testing.T, res *Result) {
	t.Helper()
	require.NoError(t, res.SetupErr)
	require.NoError(t, res.RunErr)
	require.NotNil(t, res.Report)
}
