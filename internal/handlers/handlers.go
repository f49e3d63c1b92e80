package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/suitegrid/internal/config"
	"github.com/specialistvlad/suitegrid/internal/model"
)

// Invocation is everything a runnable gets to execute one step.
type Invocation struct {
	Step *model.Step
	// Dir is the step's work directory; commands run there.
	Dir string
	// Cores is the number of cores granted for this run.
	Cores int
	// Config is the step's resolved config.
	Config *config.Config
}

// Runnable is the capability a step kind provides.
type Runnable interface {
	Run(ctx context.Context, inv *Invocation) error
}

// RunnableFunc adapts a function to Runnable.
type RunnableFunc func(ctx context.Context, inv *Invocation) error

func (f RunnableFunc) Run(ctx context.Context, inv *Invocation) error { return f(ctx, inv) }

// Module registers the runnables it provides.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered runnables, keyed by step kind.
type Handlers struct {
	all map[model.Kind]Runnable
}

// New creates and initializes a new Handlers instance.
func New() *Handlers {
	return &Handlers{
		all: make(map[model.Kind]Runnable),
	}
}

// RegisterHandler registers the runnable for a step kind.
func (r *Handlers) RegisterHandler(kind model.Kind, runnable Runnable) {
	if _, exists := r.all[kind]; exists {
		panic(fmt.Sprintf("runnable for step kind '%s' already registered", kind))
	}
	slog.Debug("Registering step runnable.", "kind", kind)
	r.all[kind] = runnable
}

// Lookup returns the runnable for kind.
func (r *Handlers) Lookup(kind model.Kind) (Runnable, bool) {
	runnable, ok := r.all[kind]
	return runnable, ok
}

// Kinds lists the registered kinds, sorted.
func (r *Handlers) Kinds() []model.Kind {
	kinds := make([]model.Kind, 0, len(r.all))
	for k := range r.all {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
