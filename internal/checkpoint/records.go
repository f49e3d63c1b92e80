package checkpoint

import (
	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/dag"
	"github.com/specialistvlad/suitegrid/internal/model"
)

// Subtree is the part of the graph needed to run an entity: its steps and
// every transitive producer, in plan order, plus the edges among them.
type Subtree struct {
	Order []string   `json:"order"`
	Edges []dag.Edge `json:"edges"`
}

// StepRecord is the payload of step.json.
type StepRecord struct {
	Component     string          `json:"component"`
	Path          string          `json:"path"`
	Kind          model.Kind      `json:"kind"`
	Command       []string        `json:"command"`
	Inputs        []model.Input   `json:"inputs"`
	Outputs       []string        `json:"outputs"`
	Baseline      []string        `json:"baseline"`
	ConfigSection string          `json:"config_section"`
	Resources     model.Resources `json:"resources"`
	Bounds        model.Bounds    `json:"bounds"`
	Predecessors  []string        `json:"predecessors"`
	Config        config.Resolved `json:"config"`
	Subtree       Subtree         `json:"subtree"`
}

// TaskRecord is the payload of task.json.
type TaskRecord struct {
	Component string          `json:"component"`
	Path      string          `json:"path"`
	Steps     []string        `json:"steps"`
	Config    config.Resolved `json:"config"`
	Bounds    model.Bounds    `json:"bounds"`
	Subtree   Subtree         `json:"subtree"`
}

// PlanRecord is the payload of plan.json.
type PlanRecord struct {
	Component string          `json:"component"`
	Suite     string          `json:"suite"`
	Tasks     []string        `json:"tasks"`
	Config    config.Resolved `json:"config"`
	Bounds    model.Bounds    `json:"bounds"`
	Subtree   Subtree         `json:"subtree"`
}
