// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the resource request of a step and the core bounds
// derived from it.
package model

// Resources is what a step asks for.
type Resources struct {
	NTasks         int `json:"ntasks"`
	MinTasks       int `json:"min_tasks"`
	CPUsPerTask    int `json:"cpus_per_task"`
	MinCPUsPerTask int `json:"min_cpus_per_task"`
	OpenMPThreads  int `json:"openmp_threads"`
}

// DefaultResources is a single serial process.
func DefaultResources() Resources {
	return Resources{NTasks: 1, MinTasks: 1, CPUsPerTask: 1, MinCPUsPerTask: 1, OpenMPThreads: 1}
}

// Bounds is the (target, minimum) core requirement of a step, or the peak
// over a task or suite.
type Bounds struct {
	TargetCores int `json:"target_cores"`
	MinCores    int `json:"min_cores"`
}

// IsZero reports whether the bounds were never computed.
func (b Bounds) IsZero() bool {
	return b.TargetCores == 0 && b.MinCores == 0
}

// Max takes the element-wise peak; entities run one after another, so the
// aggregate requirement is the largest single requirement.
func (b Bounds) Max(other Bounds) Bounds {
	return Bounds{
		TargetCores: max(b.TargetCores, other.TargetCores),
		MinCores:    max(b.MinCores, other.MinCores),
	}
}
