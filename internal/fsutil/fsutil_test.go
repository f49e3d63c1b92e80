package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "sub/c.hcl", "sub/ignored.yaml", ".hidden/d.hcl"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	// --- Act ---
	files, err := FindFilesByExtension(".hcl", root, filepath.Join(root, "a.hcl"), filepath.Join(root, "missing"))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "sub", "c.hcl"),
	}, files)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "plan.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestReplaceSymlink(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	require.NoError(t, os.Mkdir(first, 0o755))
	require.NoError(t, os.Mkdir(second, 0o755))
	link := filepath.Join(dir, "task", "mesh")

	t.Run("creates and replaces links", func(t *testing.T) {
		require.NoError(t, ReplaceSymlink(first, link))
		require.NoError(t, ReplaceSymlink(first, link))
		require.NoError(t, ReplaceSymlink(second, link))

		target, err := os.Readlink(link)
		require.NoError(t, err)
		assert.Equal(t, second, target)
	})

	t.Run("refuses to replace a real directory", func(t *testing.T) {
		err := ReplaceSymlink(second, first)
		assert.ErrorContains(t, err, "not a symlink")
	})
}
