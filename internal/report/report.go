// Package report collects the outcome of one run: per-step and per-task
// status, timings, granted cores and baseline annotations.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/suitegrid/internal/baseline"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/fsutil"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/plan"
)

// FileName is the report written next to the plan checkpoint.
const FileName = "report.json"

// Exit codes returned by ExitCode.
const (
	ExitOK           = 0
	ExitFailed       = 1
	ExitBaselineOnly = 2
)

// StepRecord is the outcome of one step.
type StepRecord struct {
	Path  string      `json:"path"`
	Kind  model.Kind  `json:"kind"`
	State model.State `json:"state"`
	// SkippedBecause names the failed upstream step when the step never ran.
	SkippedBecause string          `json:"skipped_because,omitempty"`
	ErrorClass     string          `json:"error_class,omitempty"`
	Error          string          `json:"error,omitempty"`
	Started        time.Time       `json:"started"`
	Duration       time.Duration   `json:"duration_ns"`
	Cores          int             `json:"cores"`
	Bounds         model.Bounds    `json:"bounds"`
	Baseline       baseline.Status `json:"baseline,omitempty"`
	BaselineError  string          `json:"baseline_error,omitempty"`
}

// Skipped reports whether the step was short-circuited.
func (s *StepRecord) Skipped() bool { return s.SkippedBecause != "" }

// TaskRecord is the outcome of one task. Duration is the sum of its steps.
type TaskRecord struct {
	Path     string        `json:"path"`
	State    model.State   `json:"state"`
	Steps    []string      `json:"steps"`
	Duration time.Duration `json:"duration_ns"`
	Bounds   model.Bounds  `json:"bounds"`
}

// Summary holds the aggregate counts.
type Summary struct {
	Steps          int `json:"steps"`
	StepsSucceeded int `json:"steps_succeeded"`
	StepsFailed    int `json:"steps_failed"`
	StepsSkipped   int `json:"steps_skipped"`
	BaselinePassed int `json:"baseline_passed"`
	BaselineFailed int `json:"baseline_failed"`
	Tasks          int `json:"tasks"`
	TasksSucceeded int `json:"tasks_succeeded"`
	TasksFailed    int `json:"tasks_failed"`
}

// Report is what Execute returns.
type Report struct {
	RunID     string        `json:"run_id"`
	Component string        `json:"component"`
	Suite     string        `json:"suite"`
	WorkDir   string        `json:"work_dir"`
	Available int           `json:"available_cores"`
	Bounds    model.Bounds  `json:"bounds"`
	State     model.State   `json:"state"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
	Steps     []*StepRecord `json:"steps"`
	Tasks     []*TaskRecord `json:"tasks"`
	Summary   Summary       `json:"summary"`

	index map[string]*StepRecord
}

// New starts a report for p with a fresh run id.
func New(p *plan.Plan, available int) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Component: p.Component.Name,
		Suite:     p.Name(),
		WorkDir:   p.WorkDir,
		Available: available,
		Bounds:    p.Bounds,
		State:     model.StatePending,
		Started:   time.Now(),
		index:     make(map[string]*StepRecord),
	}
}

// Step returns the record for path, creating it on first use.
func (r *Report) Step(s *model.Step) *StepRecord {
	if rec, ok := r.index[s.ID()]; ok {
		return rec
	}
	rec := &StepRecord{Path: s.ID(), Kind: s.Kind, State: s.State(), Bounds: s.Bounds()}
	r.index[rec.Path] = rec
	r.Steps = append(r.Steps, rec)
	return rec
}

// Lookup finds an existing step record.
func (r *Report) Lookup(path string) (*StepRecord, bool) {
	rec, ok := r.index[path]
	return rec, ok
}

// SetError stores the class and message of a step failure.
func (s *StepRecord) SetError(err error) {
	if err == nil {
		return
	}
	s.ErrorClass = faults.ClassName(err)
	s.Error = err.Error()
}

// SetBaseline stores a comparison result.
func (s *StepRecord) SetBaseline(res baseline.Result) {
	s.Baseline = res.Status
	if res.Err != nil {
		s.BaselineError = res.Err.Error()
	}
}

// Finish derives task and suite outcomes from the step records. A task is
// SUCCESS iff all its steps are; the suite is SUCCESS iff all tasks are.
func (r *Report) Finish(p *plan.Plan) error {
	r.Duration = time.Since(r.Started)
	r.Tasks = r.Tasks[:0]
	var errs []error

	for _, t := range p.Tasks {
		steps, err := t.Steps()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tr := &TaskRecord{Path: t.ID(), State: model.StateSuccess, Bounds: t.Bounds}
		for _, s := range steps {
			tr.Steps = append(tr.Steps, s.ID())
			rec, ok := r.index[s.ID()]
			if !ok || rec.State != model.StateSuccess {
				tr.State = model.StateError
			}
			if ok {
				tr.Duration += rec.Duration
			}
		}
		r.Tasks = append(r.Tasks, tr)
	}

	r.Summary = Summary{Steps: len(r.Steps), Tasks: len(r.Tasks)}
	for _, s := range r.Steps {
		switch {
		case s.Skipped():
			r.Summary.StepsSkipped++
		case s.State == model.StateSuccess:
			r.Summary.StepsSucceeded++
		case s.State == model.StateError:
			r.Summary.StepsFailed++
		}
		switch s.Baseline {
		case baseline.StatusPass:
			r.Summary.BaselinePassed++
		case baseline.StatusFail:
			r.Summary.BaselineFailed++
		}
	}

	r.State = model.StateSuccess
	for _, t := range r.Tasks {
		if t.State == model.StateSuccess {
			r.Summary.TasksSucceeded++
			continue
		}
		r.Summary.TasksFailed++
		r.State = model.StateError
	}
	// A step-only plan has no tasks.
	if len(r.Tasks) == 0 && (r.Summary.StepsFailed > 0 || r.Summary.StepsSkipped > 0) {
		r.State = model.StateError
	}
	return errors.Join(errs...)
}

// ExitCode maps the outcome to a process exit status.
func (r *Report) ExitCode() int {
	switch {
	case r.State != model.StateSuccess:
		return ExitFailed
	case r.Summary.BaselineFailed > 0:
		return ExitBaselineOnly
	default:
		return ExitOK
	}
}

// WriteJSON persists the report in dir and returns the file path.
func (r *Report) WriteJSON(dir string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := fsutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
