package builder

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
	"github.com/specialistvlad/suitegrid/internal/schema"
)

// Resource option names, shared by HCL attributes and config sections.
const (
	OptNTasks         = "ntasks"
	OptMinTasks       = "min_tasks"
	OptCPUsPerTask    = "cpus_per_task"
	OptMinCPUsPerTask = "min_cpus_per_task"
	OptOpenMPThreads  = "openmp_threads"
)

// buildStep validates a step definition and evaluates its expression
// attributes. configFor picks the config the step is built and run with,
// given its canonical path.
func buildStep(def *schema.Step, file string, configFor func(nodeid.Path) *config.Config, evals *evalContexts) (*model.Step, error) {
	p, err := nodeid.Parse(def.Path)
	if err != nil {
		return nil, faults.Config(faults.ErrInvalidValue, def.Path, "invalid step path: %v", err)
	}
	cfg := configFor(p)
	kind, err := model.ParseKind(def.Kind)
	if err != nil {
		return nil, faults.Config(faults.ErrInvalidValue, p.String(), "%v", err)
	}
	ectx, err := evals.For(cfg, p)
	if err != nil {
		return nil, err
	}

	step := model.NewStep(p, kind)
	step.FSInformation = model.NewFSInfo(file)
	step.Config = cfg
	if _, diags := decodeOptional(def.Command, ectx, &step.Command); diags.HasErrors() {
		return nil, exprError(p.String(), "command", diags)
	}
	if def.ConfigSection != nil {
		step.ConfigSection = *def.ConfigSection
	}

	if step.Outputs, err = relativeFiles(p, "outputs", def.Outputs); err != nil {
		return nil, err
	}
	if step.Baseline, err = relativeFiles(p, "baseline", def.Baseline); err != nil {
		return nil, err
	}
	if len(step.Baseline) > 0 && cfg.Has("baseline", "enabled") {
		if _, err := cfg.GetBool("baseline", "enabled"); err != nil {
			return nil, faults.Config(faults.ErrInvalidValue, p.String(), "baseline switch: %v", err)
		}
	}

	seen := make(map[string]struct{})
	for _, in := range def.Inputs {
		if in.Filename != path.Base(in.Filename) {
			return nil, faults.Config(faults.ErrInvalidValue, p.String(), "input filename %q must be a plain file name", in.Filename)
		}
		if _, dup := seen[in.Filename]; dup {
			return nil, faults.Config(faults.ErrInvalidValue, p.String(), "input %q is declared twice", in.Filename)
		}
		seen[in.Filename] = struct{}{}

		input := model.Input{Filename: in.Filename}
		switch {
		case in.WorkDirTarget != nil && *in.WorkDirTarget != "":
			if _, err := model.ResolveReference(p, *in.WorkDirTarget); err != nil {
				return nil, faults.Config(faults.ErrInvalidValue, p.String(), "input %q: %v", in.Filename, err)
			}
			input.WorkDirTarget = *in.WorkDirTarget
		default:
			var target string
			if _, diags := decodeOptional(in.Target, ectx, &target); diags.HasErrors() {
				return nil, exprError(p.String(), "target", diags)
			}
			if target == "" {
				return nil, faults.Config(faults.ErrInvalidValue, p.String(), "input %q has an empty target", in.Filename)
			}
			input.Target = relativeTo(file, target)
			if abs, err := filepath.Abs(input.Target); err == nil {
				input.Target = abs
			}
		}
		step.Inputs = append(step.Inputs, input)
	}

	res, err := resolveResources(def, p.String(), cfg, ectx)
	if err != nil {
		return nil, err
	}
	if err := step.SetResources(res); err != nil {
		return nil, err
	}
	return step, nil
}

// relativeFiles validates that every entry stays inside the step directory.
func relativeFiles(step nodeid.Path, attr string, files []string) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, f := range files {
		clean := path.Clean(f)
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
			return nil, faults.Config(faults.ErrInvalidValue, step.String(), "%s entry %q must be a path inside the step directory", attr, f)
		}
		out = append(out, clean)
	}
	return out, nil
}

// resolveResources applies the precedence HCL attribute > config section >
// default. The min_* defaults follow the resolved non-min values.
func resolveResources(def *schema.Step, id string, cfg *config.Config, ectx *hcl.EvalContext) (model.Resources, error) {
	section := ""
	if def.ConfigSection != nil {
		section = *def.ConfigSection
	}

	pick := func(attr hcl.Expression, option string, fallback int) (int, error) {
		var v int
		set, diags := decodeOptional(attr, ectx, &v)
		if diags.HasErrors() {
			return 0, exprError(id, option, diags)
		}
		if set {
			return v, nil
		}
		if section != "" && cfg.Has(section, option) {
			v, err := cfg.GetInt(section, option)
			if err != nil {
				return 0, fmt.Errorf("step '%s': %w", id, err)
			}
			return v, nil
		}
		return fallback, nil
	}

	var (
		r   model.Resources
		err error
	)
	if r.NTasks, err = pick(def.NTasks, OptNTasks, 1); err != nil {
		return r, err
	}
	if r.CPUsPerTask, err = pick(def.CPUsPerTask, OptCPUsPerTask, 1); err != nil {
		return r, err
	}
	if r.MinTasks, err = pick(def.MinTasks, OptMinTasks, r.NTasks); err != nil {
		return r, err
	}
	if r.MinCPUsPerTask, err = pick(def.MinCPUsPerTask, OptMinCPUsPerTask, r.CPUsPerTask); err != nil {
		return r, err
	}
	if r.OpenMPThreads, err = pick(def.OpenMPThreads, OptOpenMPThreads, 1); err != nil {
		return r, err
	}
	return r, nil
}
