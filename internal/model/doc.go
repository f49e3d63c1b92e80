// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the in-memory representation of a component and
// everything it owns: tasks, suites and the steps shared between tasks.
//
// # Core Concepts
//
//   - Component: the top-level namespace. It owns exactly one Registry, the
//     ordered tasks and the suites. There is no process-wide registry; two
//     components never see each other's steps.
//
//   - Registry: the shared-step registry. Steps are keyed by canonical path
//     and registered at most once. It is also the only place that mutates a
//     step's run state.
//
//   - Task: an ordered list of StepRefs plus a resolved config snapshot. A
//     task resolves its references through the registry, so two tasks naming
//     the same path observe the same *Step.
//
//   - Step: the smallest schedulable unit, a plain record tagged with a Kind.
//     Behavior is attached by the handlers package, keyed by that Kind.
//
//   - Suite: a named, ordered list of task paths. It owns no steps.
package model
