// internal/nodeid/parser_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectErr bool
		expected  Path
	}{
		{name: "single segment", raw: "mesh", expected: NewPath("mesh")},
		{name: "nested path", raw: "cases/cavity/run", expected: NewPath("cases", "cavity", "run")},
		{name: "surrounding separators", raw: "/mesh/gen/", expected: NewPath("mesh", "gen")},
		{name: "backslashes", raw: `mesh\gen`, expected: NewPath("mesh", "gen")},
		{name: "dots inside names", raw: "v1.2/run", expected: NewPath("v1.2", "run")},
		{name: "error - empty string", raw: "", expectErr: true},
		{name: "error - only separators", raw: "///", expectErr: true},
		{name: "error - empty segment", raw: "a//b", expectErr: true},
		{name: "error - dot dot", raw: "a/../b", expectErr: true},
		{name: "error - whitespace in segment", raw: "a b/c", expectErr: true},
		{name: "error - hyphen only", raw: "a/-", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(p), "got %v", p.Segments)
		})
	}
}

func TestPath_Relations(t *testing.T) {
	t.Parallel()

	step := MustParse("mesh/gen")
	file := MustParse("mesh/gen/out/grid.msh")

	assert.Equal(t, "mesh/gen", step.String())
	assert.Equal(t, "gen", step.Name())
	assert.Equal(t, "mesh", step.Parent().String())
	assert.True(t, file.HasPrefix(step))
	assert.False(t, step.HasPrefix(file))
	assert.False(t, MustParse("mesh/generator").HasPrefix(step))

	rest, ok := file.Rel(step)
	require.True(t, ok)
	assert.Equal(t, "out/grid.msh", rest.String())

	assert.Equal(t, "/work/comp/mesh/gen", step.FromSlash("/work/comp"))
	assert.Equal(t, "cases/a/mesh/gen", MustParse("cases/a").Join(step).String())
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	got, err := Canonical(" /a/b/ ")
	require.NoError(t, err)
	assert.Equal(t, "a/b", got)

	_, err = Canonical("a/./b")
	assert.Error(t, err)
}
