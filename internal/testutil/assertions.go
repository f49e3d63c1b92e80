package testutil

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CountStepLogs returns how many captured log lines carry msg for the step.
func CountStepLogs(logs *SafeBuffer, stepPath, msg string) int {
	n := 0
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "msg=\""+msg+"\"") && slices.Contains(strings.Fields(line), "step="+stepPath) {
			n++
		}
	}
	return n
}

// AssertStepRan checks the captured log output to confirm that a step's
// run state reached RUNNING, independent of how the final report is shaped.
func AssertStepRan(t *testing.T, logs *SafeBuffer, stepPath string) {
	t.Helper()

	require.Positive(t, CountStepLogs(logs, stepPath, "Step running."),
		"expected log output for step '%s' was not found in logs", stepPath,
	)
}
