// Package workspace realizes a plan on disk.
//
// Every step gets exactly one real directory at <work>/<component>/<step
// path>. A task directory lists its steps by name: when the step lives there
// the entry is that real directory, otherwise it is a symbolic link to the
// shared step's directory. Inputs are symbolic links inside the step
// directory. Nothing is ever copied, and materializing again only refreshes
// links.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/fsutil"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
)

// Layout summarizes what Materialize created or refreshed.
type Layout struct {
	StepDirs   []string
	TaskLinks  []string
	InputLinks []string
}

// Materialize creates the work area for p below workDir and records the
// absolute work directory on the plan.
func Materialize(ctx context.Context, p *plan.Plan, workDir string) (*Layout, error) {
	logger := ctxlog.FromContext(ctx)

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory %s: %w", workDir, err)
	}
	p.WorkDir = abs

	steps, err := p.Steps()
	if err != nil {
		return nil, err
	}

	layout := &Layout{}
	for _, s := range steps {
		dir := p.StepDir(s)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for step '%s': %w", s.ID(), err)
		}
		layout.StepDirs = append(layout.StepDirs, dir)

		for _, in := range s.Inputs {
			link := filepath.Join(dir, in.Filename)
			target, err := inputTarget(p, s, in, link)
			if err != nil {
				return nil, err
			}
			if err := fsutil.ReplaceSymlink(target, link); err != nil {
				return nil, fmt.Errorf("failed to link input %q of step '%s': %w", in.Filename, s.ID(), err)
			}
			layout.InputLinks = append(layout.InputLinks, link)
		}
		logger.Debug("Materialized step.", "step", s.ID(), "dir", dir, "inputs", len(s.Inputs))
	}

	for _, t := range p.Tasks {
		taskDir := p.TaskDir(t)
		if err := os.MkdirAll(taskDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for task '%s': %w", t.ID(), err)
		}
		ts, err := t.Steps()
		if err != nil {
			return nil, err
		}
		for _, s := range ts {
			if t.Owns(s) {
				continue
			}
			link := t.EntryPath(s).FromSlash(p.ComponentDir())
			target, err := fsutil.RelativeTarget(p.StepDir(s), link)
			if err != nil {
				return nil, err
			}
			if err := fsutil.ReplaceSymlink(target, link); err != nil {
				return nil, fmt.Errorf("failed to link shared step '%s' into task '%s': %w", s.ID(), t.ID(), err)
			}
			layout.TaskLinks = append(layout.TaskLinks, link)
		}
	}

	logger.Debug("Work area materialized.", "dir", p.ComponentDir(), "steps", len(layout.StepDirs), "task_links", len(layout.TaskLinks), "input_links", len(layout.InputLinks))
	return layout, nil
}

// inputTarget is where an input link points: a literal host file, or the
// producer's output inside the work area (relative, may dangle until the
// producer has run).
func inputTarget(p *plan.Plan, s *model.Step, in model.Input, link string) (string, error) {
	if !in.IsReference() {
		return in.Target, nil
	}
	ref, err := model.ResolveReference(s.Path, in.WorkDirTarget)
	if err != nil {
		return "", err
	}
	return fsutil.RelativeTarget(ref.FromSlash(p.ComponentDir()), link)
}
