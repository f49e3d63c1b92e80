// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex validates a single segment of a path.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	if name == "." || name == ".." || name == "-" {
		return false
	}
	return true
}

// Parse creates a Path from its string form. Leading and trailing
// separators are ignored; backslashes are treated as separators.
func Parse(raw string) (Path, error) {
	trimmed := strings.Trim(strings.ReplaceAll(strings.TrimSpace(raw), `\`, Separator), Separator)
	if trimmed == "" {
		return Path{}, fmt.Errorf("path cannot be empty")
	}

	var p Path
	for _, segment := range strings.Split(trimmed, Separator) {
		if segment == "" {
			return Path{}, fmt.Errorf("path %q contains an empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) {
			return Path{}, fmt.Errorf("invalid path segment %q in %q", segment, raw)
		}
		if !isValidSegmentName(segment) {
			return Path{}, fmt.Errorf("invalid segment name %q in %q", segment, raw)
		}
		p.Segments = append(p.Segments, segment)
	}
	return p, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Canonical parses and re-serializes raw.
func Canonical(raw string) (string, error) {
	p, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}
