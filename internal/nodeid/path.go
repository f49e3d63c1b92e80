// internal/nodeid/path.go
package nodeid

import (
	"path/filepath"
	"strings"
)

// Separator joins path segments.
const Separator = "/"

// String serializes the path into its canonical form.
func (p Path) String() string {
	return strings.Join(p.Segments, Separator)
}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool {
	return len(p.Segments) == 0
}

// Name returns the last segment, or "" for the zero path.
func (p Path) Name() string {
	if p.IsZero() {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if p.IsZero() {
		return p
	}
	return NewPath(p.Segments[:len(p.Segments)-1]...)
}

// Join appends the segments of other.
func (p Path) Join(other Path) Path {
	return NewPath(append(append([]string{}, p.Segments...), other.Segments...)...)
}

// Equal checks segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.Segments) > len(p.Segments) {
		return false
	}
	return NewPath(p.Segments[:len(prefix.Segments)]...).Equal(prefix)
}

// Rel returns the remainder of p below prefix. ok is false when prefix is
// not an ancestor of p.
func (p Path) Rel(prefix Path) (Path, bool) {
	if !p.HasPrefix(prefix) {
		return Path{}, false
	}
	return NewPath(p.Segments[len(prefix.Segments):]...), true
}

// FromSlash joins a canonical path below a filesystem directory using the
// platform separator.
func (p Path) FromSlash(dir string) string {
	return filepath.Join(append([]string{dir}, p.Segments...)...)
}
