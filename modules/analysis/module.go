package analysis

import (
	"context"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/model"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Run post-processes upstream results with the step command. Analyses read
// what other steps produced, so every reference input must resolve before
// the command starts.
func Run(ctx context.Context, inv *handlers.Invocation) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running " + handlers.Describe(inv))
	if err := handlers.CheckReferenceInputs(inv); err != nil {
		logger.Warn("Analysis inputs are missing.", "error", err)
		return err
	}
	if err := handlers.RunCommand(ctx, inv, inv.Step.Command); err != nil {
		return err
	}
	return handlers.CheckOutputs(inv)
}

// Register registers the runnable with the handlers.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler(model.KindAnalysis, handlers.RunnableFunc(Run))
}
