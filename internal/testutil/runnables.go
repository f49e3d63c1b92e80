package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/handlers"
	"github.com/specialistvlad/suitegrid/internal/model"
)

// FakeRunnable stands in for the external commands. It counts invocations
// per step, creates every declared output so downstream checks pass, and
// fails the steps listed in Fail.
type FakeRunnable struct {
	Fail map[string]bool

	mu    sync.Mutex
	calls map[string]int
	order []string
	cores map[string]int
}

// NewFakeRunnable returns a runnable that fails the given step paths.
func NewFakeRunnable(fail ...string) *FakeRunnable {
	f := &FakeRunnable{
		Fail:  make(map[string]bool),
		calls: make(map[string]int),
		cores: make(map[string]int),
	}
	for _, p := range fail {
		f.Fail[p] = true
	}
	return f
}

func (f *FakeRunnable) Run(_ context.Context, inv *handlers.Invocation) error {
	id := inv.Step.ID()
	f.mu.Lock()
	f.calls[id]++
	f.order = append(f.order, id)
	f.cores[id] = inv.Cores
	f.mu.Unlock()

	if f.Fail[id] {
		return faults.Execution(faults.ErrNonZeroExit, id, errors.New("exit status 1"), "fake failure")
	}
	for _, out := range inv.Step.Outputs {
		p := filepath.Join(inv.Dir, filepath.FromSlash(out))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(id+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Calls is how often the step was run.
func (f *FakeRunnable) Calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

// Order is the sequence of step invocations.
func (f *FakeRunnable) Order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// Cores is what the step was granted on its last run.
func (f *FakeRunnable) Cores(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cores[id]
}

// FakeHandlers registers f for every step kind.
func FakeHandlers(f *FakeRunnable) *handlers.Handlers {
	h := handlers.New()
	(&FakeModule{Runnable: f}).Register(h)
	return h
}

// FakeModule registers a FakeRunnable for every step kind.
type FakeModule struct {
	Runnable *FakeRunnable
}

func (m *FakeModule) Register(h *handlers.Handlers) {
	for _, k := range model.Kinds() {
		h.RegisterHandler(k, m.Runnable)
	}
}
