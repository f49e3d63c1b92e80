package schema

import "github.com/hashicorp/hcl/v2"

// --- Definition file structures ---

// File is the decoded content of one definition file.
type File struct {
	// Path is set by the loader; it is not part of the HCL body.
	Path       string
	Components []*Component `hcl:"component,block"`
}

// Component represents a `component` block. Several files may contribute
// blocks with the same name; they are merged in file order.
type Component struct {
	Name string `hcl:"name,label"`
	// ConfigFile is an optional component-wide config layer, relative to the
	// file declaring it.
	ConfigFile *string  `hcl:"config_file,optional"`
	Steps      []*Step  `hcl:"step,block"`
	Tasks      []*Task  `hcl:"task,block"`
	Suites     []*Suite `hcl:"suite,block"`
}

// Step represents a `step` block. The label is the step's canonical path
// relative to the component.
//
// Expression attributes are kept undecoded: the builder evaluates them once,
// during setup, against the step's resolved config (`config.<section>.<option>`)
// and its own identity (`step.path`, `step.name`). An absent attribute decodes
// to a null expression.
type Step struct {
	Path          string         `hcl:"path,label"`
	Kind          string         `hcl:"kind"`
	Command       hcl.Expression `hcl:"command,optional"`
	Outputs       []string       `hcl:"outputs,optional"`
	Baseline      []string       `hcl:"baseline,optional"`
	ConfigSection *string        `hcl:"config_section,optional"`
	Inputs        []*Input       `hcl:"input,block"`

	// Resource overrides; unset attributes fall back to config_section
	// options and then to defaults.
	NTasks         hcl.Expression `hcl:"ntasks,optional"`
	MinTasks       hcl.Expression `hcl:"min_tasks,optional"`
	CPUsPerTask    hcl.Expression `hcl:"cpus_per_task,optional"`
	MinCPUsPerTask hcl.Expression `hcl:"min_cpus_per_task,optional"`
	OpenMPThreads  hcl.Expression `hcl:"openmp_threads,optional"`
}

// Input represents an `input` block inside a step. Target is an expression;
// WorkDirTarget is a literal path so dependencies are known before any
// evaluation.
type Input struct {
	Filename      string         `hcl:"filename"`
	Target        hcl.Expression `hcl:"target,optional"`
	WorkDirTarget *string        `hcl:"work_dir_target,optional"`
}

// IsSet reports whether an optional expression attribute was written in the
// file. Expressions that need an evaluation context count as set.
func IsSet(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	if len(expr.Variables()) > 0 {
		return true
	}
	v, diags := expr.Value(nil)
	return diags.HasErrors() || !v.IsNull()
}

// Task represents a `task` block: an ordered list of step paths.
type Task struct {
	Path       string   `hcl:"path,label"`
	Steps      []string `hcl:"steps"`
	ConfigFile *string  `hcl:"config_file,optional"`
}

// Suite represents a `suite` block.
type Suite struct {
	Name  string   `hcl:"name,label"`
	Tasks []string `hcl:"tasks"`
}

// --- Aggregate ---

// Definitions is everything the loader found, in file order.
type Definitions struct {
	Files []*File
}

// ComponentNames returns the distinct component names in first-seen order.
func (d *Definitions) ComponentNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, f := range d.Files {
		for _, c := range f.Components {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			names = append(names, c.Name)
		}
	}
	return names
}
