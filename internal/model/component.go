// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Component, the owner of the shared-step registry.
package model

import (
	"fmt"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
)

// Component groups related tasks and owns their steps.
type Component struct {
	Name          string
	Registry      *Registry
	FSInformation *FSInfo
	// Config is the component-level config; shared steps are built from it.
	Config *config.Config

	tasks  []*Task
	byPath map[string]*Task
	suites []*Suite
	byName map[string]*Suite
}

// NewComponent creates a component with its own empty registry.
func NewComponent(name string) *Component {
	return &Component{
		Name:     name,
		Registry: NewRegistry(),
		byPath:   make(map[string]*Task),
		byName:   make(map[string]*Suite),
	}
}

// AddTask creates a task at path. Task paths are unique.
func (c *Component) AddTask(path nodeid.Path) (*Task, error) {
	if _, ok := c.byPath[path.String()]; ok {
		return nil, fmt.Errorf("component '%s': duplicate task '%s'", c.Name, path)
	}
	t := NewTask(path, c.Registry)
	c.tasks = append(c.tasks, t)
	c.byPath[t.ID()] = t
	return t, nil
}

// Task looks a task up by canonical path.
func (c *Component) Task(path string) (*Task, bool) {
	t, ok := c.byPath[path]
	return t, ok
}

// Tasks returns tasks in declaration order.
func (c *Component) Tasks() []*Task {
	out := make([]*Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// AddSuite registers a suite; every referenced task must exist.
func (c *Component) AddSuite(s *Suite) error {
	if _, ok := c.byName[s.Name]; ok {
		return fmt.Errorf("component '%s': duplicate suite '%s'", c.Name, s.Name)
	}
	for _, p := range s.TaskPaths {
		if _, ok := c.byPath[p]; !ok {
			return fmt.Errorf("component '%s': suite '%s' references unknown task '%s'", c.Name, s.Name, p)
		}
	}
	c.suites = append(c.suites, s)
	c.byName[s.Name] = s
	return nil
}

// Suite looks a suite up by name.
func (c *Component) Suite(name string) (*Suite, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Suites returns suites in declaration order.
func (c *Component) Suites() []*Suite {
	out := make([]*Suite, len(c.suites))
	copy(out, c.suites)
	return out
}
