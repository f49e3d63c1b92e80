// internal/nodeid/types.go
package nodeid

// Path is the structured representation of a canonical entity path.
type Path struct {
	Segments []string
}

// NewPath builds a path from already validated segments.
func NewPath(segments ...string) Path {
	cp := make([]string, len(segments))
	copy(cp, segments)
	return Path{Segments: cp}
}
