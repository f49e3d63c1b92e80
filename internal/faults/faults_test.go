package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesClassAndReason(t *testing.T) {
	err := Config(ErrCyclicInterpolation, "ocean:dt", "a:b -> b:a -> a:b")

	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, ErrCyclicInterpolation)
	assert.NotErrorIs(t, err, ErrDependency)
	assert.NotErrorIs(t, err, ErrUnresolvedReference)

	wrapped := fmt.Errorf("loading task: %w", err)
	assert.ErrorIs(t, wrapped, ErrConfig)

	var fe *Error
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "ocean:dt", fe.Path)
}

func TestError_Message(t *testing.T) {
	err := Resource(ErrInsufficientCores, "alpha/forward", "need 8, have 4")
	assert.Equal(t, "resource error (insufficient cores) in 'alpha/forward': need 8, have 4", err.Error())

	cause := errors.New("exit status 3")
	exec := Execution(ErrNonZeroExit, "alpha/forward", cause, "command failed")
	assert.Equal(t, "execution error (non-zero exit) in 'alpha/forward': command failed: exit status 3", exec.Error())
	assert.ErrorIs(t, exec, cause)
}

func TestIsSetupFatal(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		fatal bool
		class string
	}{
		{"config", Config(ErrMissingOption, "", "x"), true, "ConfigError"},
		{"dependency", Dependency(ErrCycle, "", "x"), true, "DependencyError"},
		{"stale checkpoint", StaleCheckpoint(ErrSchemaVersion, "", "x"), true, "StaleCheckpointError"},
		{"resource", Resource(ErrInsufficientCores, "", "x"), false, "ResourceError"},
		{"execution", Execution(ErrNonZeroExit, "", nil, "x"), false, "ExecutionError"},
		{"validation", Validation(ErrBaselineMismatch, "", "x"), false, "ValidationError"},
		{"plain", errors.New("boom"), false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.fatal, IsSetupFatal(tc.err))
			assert.Equal(t, tc.class, ClassName(tc.err))
		})
	}
}
