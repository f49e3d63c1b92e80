package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReplaceSymlink makes link a symbolic link pointing at target. An existing
// symlink at that location is replaced; an existing regular file or directory
// is an error because it would mean silently discarding real content.
func ReplaceSymlink(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return err
	}

	info, err := os.Lstat(link)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		current, readErr := os.Readlink(link)
		if readErr == nil && current == target {
			return nil
		}
		if err := os.Remove(link); err != nil {
			return err
		}
	case err == nil:
		return fmt.Errorf("refusing to replace %s with a link: path exists and is not a symlink", link)
	case !os.IsNotExist(err):
		return err
	}

	return os.Symlink(target, link)
}

// RelativeTarget returns the target of a link placed at link that points at
// dest, expressed relative to the link's directory so the work area can be
// moved as a whole.
func RelativeTarget(dest, link string) (string, error) {
	return filepath.Rel(filepath.Dir(link), dest)
}
