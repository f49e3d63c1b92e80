// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file implements the shared-step registry owned by each Component.
package model

import "fmt"

// Registry holds every step of one component, keyed by canonical path.
type Registry struct {
	steps map[string]*Step
	order []string
}

func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]*Step)}
}

// Register inserts step under its path, or returns the instance already
// registered there. Callers must continue with the returned pointer.
func (r *Registry) Register(step *Step) *Step {
	id := step.ID()
	if existing, ok := r.steps[id]; ok {
		return existing
	}
	r.steps[id] = step
	r.order = append(r.order, id)
	return step
}

// Lookup finds a step by canonical path.
func (r *Registry) Lookup(path string) (*Step, bool) {
	s, ok := r.steps[path]
	return s, ok
}

// Steps returns every step in registration order.
func (r *Registry) Steps() []*Step {
	out := make([]*Step, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.steps[id])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Transition moves a registered step to a new run state.
func (r *Registry) Transition(path string, to State) error {
	s, ok := r.steps[path]
	if !ok {
		return fmt.Errorf("step '%s' is not registered", path)
	}
	if !CanTransition(s.state, to) {
		return &TransitionError{Path: path, From: s.state, To: to}
	}
	s.state = to
	return nil
}
