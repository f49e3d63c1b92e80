// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Step record. A step carries no behavior of its own;
// the runnable for its Kind is looked up at execution time.
package model

import (
	"errors"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
)

// ErrFrozen is returned when resources are changed after the plan was
// checkpointed.
var ErrFrozen = errors.New("step resources are frozen")

// Step is the smallest schedulable unit.
type Step struct {
	Path          nodeid.Path
	Kind          Kind
	Command       []string
	Inputs        []Input
	Outputs       []string
	Baseline      []string
	ConfigSection string
	FSInformation *FSInfo
	// Config is what the step runs with: its owning task's config, or the
	// component config for shared steps.
	Config *config.Config

	resources Resources
	bounds    Bounds
	frozen    bool
	state     State
}

// NewStep creates a pending step with default resources.
func NewStep(path nodeid.Path, kind Kind) *Step {
	return &Step{
		Path:      path,
		Kind:      kind,
		resources: DefaultResources(),
		state:     StatePending,
	}
}

// ID is the canonical path string, the registry key.
func (s *Step) ID() string { return s.Path.String() }

// Name is the last path segment.
func (s *Step) Name() string { return s.Path.Name() }

func (s *Step) State() State { return s.state }

func (s *Step) Resources() Resources { return s.resources }

func (s *Step) Bounds() Bounds { return s.bounds }

func (s *Step) Frozen() bool { return s.frozen }

// SetResources replaces the resource request.
func (s *Step) SetResources(r Resources) error {
	if s.frozen {
		return ErrFrozen
	}
	s.resources = r
	return nil
}

// SetBounds records the negotiated bounds.
func (s *Step) SetBounds(b Bounds) error {
	if s.frozen {
		return ErrFrozen
	}
	s.bounds = b
	return nil
}

// Freeze seals resources and bounds. It cannot be undone.
func (s *Step) Freeze() { s.frozen = true }

// HasOutput reports whether rel (relative to the step directory) is a
// declared output.
func (s *Step) HasOutput(rel string) bool {
	for _, out := range s.Outputs {
		if out == rel {
			return true
		}
	}
	return false
}
