package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/suitegrid/internal/builder"
	"github.com/specialistvlad/suitegrid/internal/checkpoint"
	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/executor"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/hcl_adapter"
	"github.com/specialistvlad/suitegrid/internal/localsession"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
	"github.com/specialistvlad/suitegrid/internal/report"
	"github.com/specialistvlad/suitegrid/internal/resources"
	"github.com/specialistvlad/suitegrid/internal/scheduler"
	"github.com/specialistvlad/suitegrid/internal/workspace"
)

// ResolveConfig stacks layers on top of the package defaults and resolves
// every option, so interpolation problems surface now.
func ResolveConfig(layers ...config.Layer) (*config.Config, error) {
	cfg := config.New(append([]config.Layer{config.DefaultLayer()}, layers...)...)
	if _, err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadComponents reads step, task and suite definitions and builds the
// entity model on top of base.
func LoadComponents(ctx context.Context, base *config.Config, paths ...string) ([]*model.Component, error) {
	defs, err := hcl_adapter.NewLoader().Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx, defs, base.Layers())
}

// PickComponent selects a component by name. An empty name is fine when
// there is exactly one.
func PickComponent(components []*model.Component, name string) (*model.Component, error) {
	names := make([]string, 0, len(components))
	for _, c := range components {
		if c.Name == name || (name == "" && len(components) == 1) {
			return c, nil
		}
		names = append(names, c.Name)
	}
	sort.Strings(names)
	if name == "" {
		return nil, faults.Config(faults.ErrUnresolvedReference, "", "choose a component: %s", strings.Join(names, ", "))
	}
	return nil, faults.Config(faults.ErrUnresolvedReference, name, "unknown component, have: %s", strings.Join(names, ", "))
}

// BuildPlan selects tasks of c (a suite, explicit task paths, or all) and
// schedules their steps.
func BuildPlan(ctx context.Context, c *model.Component, tasks []string, suite string) (*plan.Plan, error) {
	selected, err := builder.Select(c, tasks, suite)
	if err != nil {
		return nil, err
	}
	p, err := scheduler.Build(ctx, c, selected)
	if err != nil {
		return nil, err
	}
	p.Suite = suite
	return p, nil
}

// NegotiateResources annotates every step, task and the suite with core
// bounds.
func NegotiateResources(ctx context.Context, p *plan.Plan) error {
	return resources.Negotiate(ctx, p)
}

// Materialize lays the plan out below workDir.
func Materialize(ctx context.Context, p *plan.Plan, workDir string) (*workspace.Layout, error) {
	return workspace.Materialize(ctx, p, workDir)
}

// SaveCheckpoint freezes p and writes its descriptors.
func SaveCheckpoint(ctx context.Context, p *plan.Plan) error {
	return checkpoint.Save(ctx, p)
}

// LoadCheckpoint reads the plan back from a work, task or step directory.
func LoadCheckpoint(ctx context.Context, path string) (*plan.Plan, error) {
	return checkpoint.Load(ctx, path)
}

// Execute runs p in a local session.
func Execute(ctx context.Context, p *plan.Plan, reg *handlers.Handlers, opts executor.Options) (*report.Report, error) {
	factory := &localsession.SessionFactory{}
	sess, err := factory.NewSession(ctx, p, reg, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to close session.", "error", err)
		}
	}()

	exec, err := sess.GetExecutor()
	if err != nil {
		return nil, fmt.Errorf("failed to get executor: %w", err)
	}
	return exec.Execute(ctx)
}
