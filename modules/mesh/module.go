package mesh

import (
	"context"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/model"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Run generates a mesh by running the step command directly. A mesh exists
// to be consumed, so a step that declares no outputs is refused before its
// command starts, and every declared output must exist afterwards.
func Run(ctx context.Context, inv *handlers.Invocation) error {
	ctxlog.FromContext(ctx).Debug("Running " + handlers.Describe(inv))
	if len(inv.Step.Outputs) == 0 {
		return faults.Execution(faults.ErrMissingOutput, inv.Step.ID(), nil, "mesh step declares no outputs")
	}
	if err := handlers.RunCommand(ctx, inv, inv.Step.Command); err != nil {
		return err
	}
	return handlers.CheckOutputs(inv)
}

// Register registers the runnable with the handlers.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler(model.KindMesh, handlers.RunnableFunc(Run))
}
