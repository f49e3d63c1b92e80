// Package version holds the framework version recorded in checkpoints and
// reports. It is overridden at build time with
//
//	-ldflags "-X github.com/specialistvlad/suitegrid/internal/version.Version=..."
package version

// Version of the framework.
var Version = "0.3.0"
