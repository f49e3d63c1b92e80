// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces for local, in-process execution.
package localsession

import (
	"context"
	"errors"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/events"
	"github.com/specialistvlad/suitegrid/internal/executor"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/localexecutor"
	"github.com/specialistvlad/suitegrid/internal/plan"
	"github.com/specialistvlad/suitegrid/internal/session"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

// NewSession wires a local executor for p. The session owns the event sink
// and closes it with the session.
func (f *SessionFactory) NewSession(
	ctx context.Context,
	p *plan.Plan,
	reg *handlers.Handlers,
	opts executor.Options,
) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Creating local session.", "plan", p.Name(), "steps", len(p.Order))

	if reg == nil {
		return nil, errors.New("local session needs registered runnables")
	}
	if opts.Sink == nil {
		opts.Sink = events.NopSink{}
	}

	return &Session{
		executor: localexecutor.New(p, reg, opts),
		sink:     opts.Sink,
	}, nil
}

// Session implements session.Session for local runs.
type Session struct {
	executor executor.Executor
	sink     events.Sink
}

// GetExecutor returns the executor that was created and wired up by the factory.
func (s *Session) GetExecutor() (executor.Executor, error) {
	return s.executor, nil
}

// Close releases the event sink.
func (s *Session) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Closing local session.")
	return s.sink.Close()
}
