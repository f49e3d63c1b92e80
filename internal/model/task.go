// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Task, an ordered list of weak step references.
package model

import (
	"fmt"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
)

// StepRef is a weak reference to a registered step.
type StepRef struct {
	Path string
}

// Task is one test scenario.
type Task struct {
	Path          nodeid.Path
	FSInformation *FSInfo
	// ConfigFile is the optional task-local config layer.
	ConfigFile string
	Bounds     Bounds

	registry *Registry
	refs     []StepRef
	config   *config.Config
	resolved config.Resolved
}

// NewTask creates a task bound to its component's registry.
func NewTask(path nodeid.Path, registry *Registry) *Task {
	return &Task{Path: path, registry: registry}
}

func (t *Task) ID() string   { return t.Path.String() }
func (t *Task) Name() string { return t.Path.Name() }

// UseStep registers step (or reuses the instance already registered at its
// path) and appends a reference to it. Using the same path twice is a no-op.
func (t *Task) UseStep(step *Step) *Step {
	shared := t.registry.Register(step)
	for _, ref := range t.refs {
		if ref.Path == shared.ID() {
			return shared
		}
	}
	t.refs = append(t.refs, StepRef{Path: shared.ID()})
	return shared
}

// StepRefs returns the references in declared order.
func (t *Task) StepRefs() []StepRef {
	out := make([]StepRef, len(t.refs))
	copy(out, t.refs)
	return out
}

// Steps resolves the references through the registry.
func (t *Task) Steps() ([]*Step, error) {
	out := make([]*Step, 0, len(t.refs))
	for _, ref := range t.refs {
		s, ok := t.registry.Lookup(ref.Path)
		if !ok {
			return nil, fmt.Errorf("task '%s' references unregistered step '%s'", t.ID(), ref.Path)
		}
		out = append(out, s)
	}
	return out, nil
}

// EntryPath is where step appears inside the task directory.
func (t *Task) EntryPath(step *Step) nodeid.Path {
	return t.Path.Join(nodeid.NewPath(step.Name()))
}

// Owns reports whether step lives inside this task's directory rather than
// being shared from elsewhere in the component.
func (t *Task) Owns(step *Step) bool {
	return t.EntryPath(step).Equal(step.Path)
}

// SetConfig attaches the task's config and its resolved snapshot.
func (t *Task) SetConfig(cfg *config.Config, resolved config.Resolved) {
	t.config = cfg
	t.resolved = resolved
}

// Config returns the task's config, nil before the task is built.
func (t *Task) Config() *config.Config { return t.config }

// Resolved returns the snapshot recorded at setup.
func (t *Task) Resolved() config.Resolved { return t.resolved }
