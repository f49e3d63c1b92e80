package builder

import (
	"context"
	"path/filepath"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
	"github.com/specialistvlad/suitegrid/internal/schema"
)

// Build constructs one Component per distinct component name in defs.
// base holds the layers shared by every component (defaults, machine, user).
func Build(ctx context.Context, defs *schema.Definitions, base []config.Layer) ([]*model.Component, error) {
	logger := ctxlog.FromContext(ctx)

	var components []*model.Component
	for _, name := range defs.ComponentNames() {
		parts := collect(defs, name)
		c, err := buildComponent(ctx, name, parts, base)
		if err != nil {
			return nil, err
		}
		logger.Debug("Built component.", "component", name, "steps", c.Registry.Len(), "tasks", len(c.Tasks()), "suites", len(c.Suites()))
		components = append(components, c)
	}
	return components, nil
}

// part is one component block together with the file it came from.
type part struct {
	file  string
	block *schema.Component
}

func collect(defs *schema.Definitions, name string) []part {
	var parts []part
	for _, f := range defs.Files {
		for _, c := range f.Components {
			if c.Name == name {
				parts = append(parts, part{file: f.Path, block: c})
			}
		}
	}
	return parts
}

func buildComponent(ctx context.Context, name string, parts []part, base []config.Layer) (*model.Component, error) {
	c := model.NewComponent(name)
	c.FSInformation = model.NewFSInfo(parts[0].file)

	layers := append([]config.Layer{}, base...)
	for _, p := range parts {
		if p.block.ConfigFile == nil {
			continue
		}
		layer, err := config.LoadLayerFile("component", relativeTo(p.file, *p.block.ConfigFile))
		if err != nil {
			return nil, faults.Config(faults.ErrInvalidValue, name, "%v", err)
		}
		layers = append(layers, layer)
	}
	c.Config = config.New(layers...)
	if _, err := c.Config.Resolve(); err != nil {
		return nil, err
	}

	// Task configs first: a step living inside a task directory is built
	// with that task's config.
	taskConfigs := make(map[string]*taskConfig)
	for _, p := range parts {
		for _, def := range p.block.Tasks {
			tc, err := newTaskConfig(def, p.file, layers)
			if err != nil {
				return nil, err
			}
			taskConfigs[tc.path.String()] = tc
		}
	}

	declared := make(map[string]*model.Step)
	evals := newEvalContexts()
	for _, p := range parts {
		for _, def := range p.block.Steps {
			step, err := buildStep(def, p.file, func(path nodeid.Path) *config.Config {
				if tc, ok := taskConfigs[path.Parent().String()]; ok {
					return tc.cfg
				}
				return c.Config
			}, evals)
			if err != nil {
				return nil, err
			}
			if _, dup := declared[step.ID()]; dup {
				return nil, faults.Config(faults.ErrInvalidValue, step.ID(), "step is declared more than once in component '%s'", name)
			}
			declared[step.ID()] = c.Registry.Register(step)
		}
	}

	for _, p := range parts {
		for _, def := range p.block.Tasks {
			if err := buildTask(ctx, c, def, p.file, taskConfigs, declared); err != nil {
				return nil, err
			}
		}
	}

	for _, p := range parts {
		for _, def := range p.block.Suites {
			paths := make([]string, 0, len(def.Tasks))
			for _, raw := range def.Tasks {
				canonical, err := nodeid.Canonical(raw)
				if err != nil {
					return nil, faults.Config(faults.ErrInvalidValue, def.Name, "suite task %q: %v", raw, err)
				}
				if _, ok := c.Task(canonical); !ok {
					return nil, unknown("suite '"+def.Name+"' task", canonical, taskIDs(c))
				}
				paths = append(paths, canonical)
			}
			suite := &model.Suite{Name: def.Name, TaskPaths: paths, FSInformation: model.NewFSInfo(p.file)}
			if err := c.AddSuite(suite); err != nil {
				return nil, faults.Config(faults.ErrInvalidValue, def.Name, "%v", err)
			}
		}
	}
	return c, nil
}

// taskConfig is a task's resolved config, computed before its steps exist.
type taskConfig struct {
	path       nodeid.Path
	configFile string
	cfg        *config.Config
	resolved   config.Resolved
}

func newTaskConfig(def *schema.Task, file string, layers []config.Layer) (*taskConfig, error) {
	path, err := nodeid.Parse(def.Path)
	if err != nil {
		return nil, faults.Config(faults.ErrInvalidValue, def.Path, "invalid task path: %v", err)
	}
	tc := &taskConfig{path: path}

	taskLayers := layers
	if def.ConfigFile != nil {
		tc.configFile = relativeTo(file, *def.ConfigFile)
		layer, err := config.LoadLayerFile(config.LayerTask, tc.configFile)
		if err != nil {
			return nil, faults.Config(faults.ErrInvalidValue, path.String(), "%v", err)
		}
		taskLayers = append(append([]config.Layer{}, layers...), layer)
	}
	tc.cfg = config.New(taskLayers...)
	if tc.resolved, err = tc.cfg.Resolve(); err != nil {
		return nil, err
	}
	return tc, nil
}

func buildTask(ctx context.Context, c *model.Component, def *schema.Task, file string, configs map[string]*taskConfig, declared map[string]*model.Step) error {
	path, err := nodeid.Parse(def.Path)
	if err != nil {
		return faults.Config(faults.ErrInvalidValue, def.Path, "invalid task path: %v", err)
	}
	tc := configs[path.String()]
	task, err := c.AddTask(path)
	if err != nil {
		return faults.Config(faults.ErrInvalidValue, path.String(), "%v", err)
	}
	task.FSInformation = model.NewFSInfo(file)
	task.ConfigFile = tc.configFile
	task.SetConfig(tc.cfg, tc.resolved)

	// The task directory holds one entry per step name.
	byName := make(map[string]string)
	for _, raw := range def.Steps {
		canonical, err := nodeid.Canonical(raw)
		if err != nil {
			return faults.Config(faults.ErrInvalidValue, task.ID(), "step %q: %v", raw, err)
		}
		step, ok := declared[canonical]
		if !ok {
			return unknown("task '"+task.ID()+"' step", canonical, sortedIDs(declared))
		}
		if other, clash := byName[step.Name()]; clash && other != step.ID() {
			return faults.Config(faults.ErrInvalidValue, task.ID(),
				"steps '%s' and '%s' share the name '%s' and would both live at %s", other, step.ID(), step.Name(), task.EntryPath(step))
		}
		byName[step.Name()] = step.ID()
		task.UseStep(step)
	}

	ctxlog.FromContext(ctx).Debug("Built task.", "task", task.ID(), "steps", len(task.StepRefs()))
	return nil
}

// relativeTo resolves p against the directory of the definition file.
func relativeTo(file, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(file), p)
}
