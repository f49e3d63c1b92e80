// Package events publishes run progress to an optional dashboard.
package events

import (
	"context"
	"sync"
	"time"
)

// Scope says which entity an event is about.
type Scope string

const (
	ScopeStep  Scope = "step"
	ScopeTask  Scope = "task"
	ScopeSuite Scope = "suite"
)

// Event is one state transition during a run.
type Event struct {
	RunID   string    `json:"run_id"`
	Scope   Scope     `json:"scope"`
	Path    string    `json:"path"`
	State   string    `json:"state"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Sink receives events. Publishing never fails a run, so Publish has no
// error return; sinks log their own delivery problems.
type Sink interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) {}
func (NopSink) Close() error                   { return nil }

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
