// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

// Suite is a named, ordered collection of tasks of one component.
type Suite struct {
	Name          string
	TaskPaths     []string
	FSInformation *FSInfo
}
