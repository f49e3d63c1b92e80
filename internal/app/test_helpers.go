package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing with debug
// logging captured in the returned buffer.
func SetupAppTest(t *testing.T, cfg *Config, modules ...handlers.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	testApp := NewApp(logBuffer, cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("SUITEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
