// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the run state machine of a step.
package model

import "fmt"

// State is the run state of a step within one run invocation.
type State string

const (
	StatePending State = "PENDING"
	StateRunning State = "RUNNING"
	StateSuccess State = "SUCCESS"
	StateError   State = "ERROR"
)

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError
}

var transitions = map[State][]State{
	StatePending: {StateRunning, StateError},
	StateRunning: {StateSuccess, StateError},
}

// CanTransition reports whether from -> to is a legal move.
// PENDING -> ERROR is the short-circuit taken when an upstream step failed.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is returned for illegal state moves.
type TransitionError struct {
	Path     string
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("step '%s': illegal state transition %s -> %s", e.Path, e.From, e.To)
}
