// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines step inputs and how a reference input is resolved to
// the producing step's output.
package model

import (
	"fmt"
	"path"
	"strings"

	"github.com/specialistvlad/suitegrid/internal/nodeid"
)

// Input is a file linked into a step's directory before it runs. Exactly one
// of Target and WorkDirTarget is set.
type Input struct {
	// Filename is the link name inside the step directory.
	Filename string `json:"filename"`
	// Target is a literal file on the host.
	Target string `json:"target,omitempty"`
	// WorkDirTarget references another step's output, relative to the
	// consuming step's path.
	WorkDirTarget string `json:"work_dir_target,omitempty"`
}

// IsReference reports whether the input is produced by another step.
func (i Input) IsReference() bool {
	return i.WorkDirTarget != ""
}

// ResolveReference joins a work_dir_target against the consuming step's path
// and returns the canonical component-relative path of the referenced file.
func ResolveReference(consumer nodeid.Path, ref string) (nodeid.Path, error) {
	if path.IsAbs(ref) {
		return nodeid.Path{}, fmt.Errorf("work_dir_target %q must be relative", ref)
	}
	joined := path.Clean(path.Join(consumer.String(), ref))
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return nodeid.Path{}, fmt.Errorf("work_dir_target %q escapes the component", ref)
	}
	return nodeid.Parse(joined)
}
