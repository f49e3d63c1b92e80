package model

import (
	"context"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	stepmodel "github.com/specialistvlad/suitegrid/internal/model"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Run launches the step command under the configured parallel launcher.
func Run(ctx context.Context, inv *handlers.Invocation) error {
	ctxlog.FromContext(ctx).Debug("Running " + handlers.Describe(inv))

	var argv []string
	if len(inv.Step.Command) > 0 {
		launcher, err := handlers.Launcher(inv)
		if err != nil {
			return err
		}
		argv = append(launcher, inv.Step.Command...)
	}
	if err := handlers.RunCommand(ctx, inv, argv); err != nil {
		return err
	}
	return handlers.CheckOutputs(inv)
}

// Register registers the runnable with the handlers.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler(stepmodel.KindModel, handlers.RunnableFunc(Run))
}
