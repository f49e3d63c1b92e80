package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/events"
	"github.com/specialistvlad/suitegrid/internal/executor"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
	"github.com/specialistvlad/suitegrid/internal/report"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	outW     io.Writer
	logger   *slog.Logger
	handlers *handlers.Handlers
	config   *Config

	httpServer *http.Server
	mu         sync.Mutex
	current    string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and handlers.
func NewApp(outW io.Writer, cfg *Config, modules ...handlers.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	h := handlers.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(h)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", h.Kinds())

	return &App{ctx: ctx, outW: outW, logger: logger, handlers: h, config: cfg}
}

// Handlers returns the application's runnables. This is primarily for testing.
func (a *App) Handlers() *handlers.Handlers {
	return a.handlers
}

// Context returns the app context carrying its logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// layers loads the machine and user config files.
func (a *App) layers() ([]config.Layer, error) {
	var layers []config.Layer
	if a.config.MachineConfig != "" {
		l, err := config.LoadLayerFile(config.LayerMachine, a.config.MachineConfig)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	for _, f := range a.config.ConfigFiles {
		l, err := config.LoadLayerFile(config.LayerUser, f)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return layers, nil
}

func (a *App) components(ctx context.Context) ([]*model.Component, error) {
	layers, err := a.layers()
	if err != nil {
		return nil, err
	}
	base, err := ResolveConfig(layers...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Config layers resolved.", "layers", len(base.Layers()))
	return LoadComponents(ctx, base, a.config.DefinitionsPath)
}

// Setup is the first phase: resolve config, build and negotiate the plan,
// materialize the work area and freeze it into checkpoints.
func (a *App) Setup(ctx context.Context) (*plan.Plan, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Setup method started.")

	components, err := a.components(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	c, err := PickComponent(components, a.config.Component)
	if err != nil {
		return nil, err
	}
	p, err := BuildPlan(ctx, c, a.config.Tasks, a.config.Suite)
	if err != nil {
		return nil, err
	}
	if err := NegotiateResources(ctx, p); err != nil {
		return nil, err
	}
	if _, err := Materialize(ctx, p, a.config.WorkDir); err != nil {
		return nil, err
	}
	if err := SaveCheckpoint(ctx, p); err != nil {
		return nil, err
	}

	a.logger.Info("🧱 Setup finished.",
		"component", c.Name, "suite", p.Name(), "tasks", len(p.Tasks), "steps", len(p.Order),
		"target_cores", p.Bounds.TargetCores, "min_cores", p.Bounds.MinCores, "work_dir", p.WorkDir)
	fmt.Fprintf(a.outW, "Set up %d tasks (%d steps) of %s in %s; needs %d cores (min %d).\n",
		len(p.Tasks), len(p.Order), c.Name, p.WorkDir, p.Bounds.TargetCores, p.Bounds.MinCores)
	return p, nil
}

// Run is the second phase: reload the checkpoint, execute it and report.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	p, err := LoadCheckpoint(ctx, a.config.CheckpointPath)
	if err != nil {
		return nil, err
	}

	a.healthCheckServer()
	defer func() {
		if err := a.closeHealthCheckServer(); err != nil {
			a.logger.Warn("Health check server did not stop cleanly.", "error", err)
		}
	}()

	var sink events.Sink = events.NopSink{}
	if a.config.EventsURL != "" {
		s, err := events.Dial(ctx, a.config.EventsURL, a.config.EventsNamespace)
		if err != nil {
			a.logger.Warn("Progress events disabled.", "error", err)
		} else {
			sink = s
		}
	}

	r, err := Execute(ctx, p, a.handlers, executor.Options{
		Available:   a.config.Cores,
		BaselineDir: a.config.BaselineDir,
		Sink:        sink,
		OnStep:      a.setCurrent,
	})
	if err != nil {
		return r, fmt.Errorf("execution failed: %w", err)
	}
	a.setCurrent("")

	if err := r.Render(a.outW); err != nil {
		return r, err
	}
	path, err := r.WriteJSON(p.WorkDir)
	if err != nil {
		return r, err
	}
	a.logger.Debug("Report written.", "path", path)
	return r, nil
}

// List prints components, tasks, suites and which steps are shared.
func (a *App) List(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	components, err := a.components(ctx)
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}

	for _, c := range components {
		if a.config.Component != "" && c.Name != a.config.Component {
			continue
		}
		fmt.Fprintf(a.outW, "%s\n", c.Name)
		users := map[string][]string{}
		for _, t := range c.Tasks() {
			fmt.Fprintf(a.outW, "  task %s\n", t.ID())
			for _, ref := range t.StepRefs() {
				users[ref.Path] = append(users[ref.Path], t.ID())
			}
		}
		for _, s := range c.Suites() {
			fmt.Fprintf(a.outW, "  suite %s: %d tasks\n", s.Name, len(s.TaskPaths))
		}
		for _, s := range c.Registry.Steps() {
			if len(users[s.ID()]) > 1 {
				fmt.Fprintf(a.outW, "  shared step %s used by %v\n", s.ID(), users[s.ID()])
			}
		}
	}
	return nil
}

func (a *App) setCurrent(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = id
}

func (a *App) currentStep() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
