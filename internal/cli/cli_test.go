package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/suitegrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Commands(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want func(t *testing.T, cfg *app.Config)
	}{
		{
			name: "setup with suite and layers",
			args: []string{"setup", "-suite", "nightly", "-work-dir", "/work", "-config", "a.yaml", "-config", "b.yaml", "defs"},
			want: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.CommandSetup, cfg.Command)
				assert.Equal(t, "defs", cfg.DefinitionsPath)
				assert.Equal(t, "nightly", cfg.Suite)
				assert.Equal(t, "/work", cfg.WorkDir)
				assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.ConfigFiles)
			},
		},
		{
			name: "setup with tasks",
			args: []string{"setup", "-task", "alpha", "-task", "beta", "-work-dir", "w", "defs.hcl"},
			want: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, []string{"alpha", "beta"}, cfg.Tasks)
				assert.Empty(t, cfg.Suite)
			},
		},
		{
			name: "run",
			args: []string{"run", "-cores", "16", "-baseline", "/ref", "-log-level", "DEBUG", "/work/ocean/alpha"},
			want: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.CommandRun, cfg.Command)
				assert.Equal(t, "/work/ocean/alpha", cfg.CheckpointPath)
				assert.Equal(t, 16, cfg.Cores)
				assert.Equal(t, "/ref", cfg.BaselineDir)
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "/", cfg.EventsNamespace)
			},
		},
		{
			name: "list",
			args: []string{"list", "-component", "ocean", "defs"},
			want: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.CommandList, cfg.Command)
				assert.Equal(t, "ocean", cfg.Component)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer

			cfg, exit, err := Parse(tc.args, &out)

			require.NoError(t, err)
			require.False(t, exit)
			tc.want(t, cfg)
		})
	}
}

func TestParse_ExitCleanly(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"-h"}, {"run", "-h"}, {"setup"}, {"version"}} {
		var out bytes.Buffer
		cfg, exit, err := Parse(args, &out)
		require.NoError(t, err, args)
		assert.True(t, exit, args)
		assert.Nil(t, cfg)
		assert.NotEmpty(t, out.String())
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown command", []string{"deploy"}, `unknown command "deploy"`},
		{"unknown flag", []string{"run", "--nope", "w"}, "flag provided but not defined"},
		{"bad log format", []string{"list", "-log-format", "xml", "defs"}, "invalid log-format"},
		{"bad log level", []string{"list", "-log-level", "loud", "defs"}, "invalid log-level"},
		{"setup needs work dir", []string{"setup", "defs"}, "WorkDir"},
		{"negative cores", []string{"run", "-cores", "-1", "w"}, "cores must not be negative"},
		{"extra arguments", []string{"run", "a", "b"}, "unexpected arguments"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer

			_, _, err := Parse(tc.args, &out)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.msg)
		})
	}
}
