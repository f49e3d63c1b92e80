// Package faults defines the error taxonomy shared by every stage of the
// framework. Each error carries a class (what went wrong at the level the
// caller cares about) and an optional reason (the precise cause), both of
// which can be matched with errors.Is.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Class sentinels.
var (
	ErrConfig          = errors.New("config error")
	ErrDependency      = errors.New("dependency error")
	ErrStaleCheckpoint = errors.New("stale checkpoint")
	ErrResource        = errors.New("resource error")
	ErrExecution       = errors.New("execution error")
	ErrValidation      = errors.New("validation error")
)

// Reason sentinels.
var (
	ErrCyclicInterpolation = errors.New("cyclic interpolation")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrInterpolationDepth  = errors.New("interpolation depth exceeded")
	ErrMissingOption       = errors.New("missing option")
	ErrInvalidValue        = errors.New("invalid value")
	ErrResourceBounds      = errors.New("invalid resource bounds")

	ErrCycle           = errors.New("cycle detected")
	ErrMissingProducer = errors.New("missing producer")

	ErrSchemaVersion = errors.New("schema version mismatch")
	ErrDigest        = errors.New("digest mismatch")

	ErrInsufficientCores = errors.New("insufficient cores")
	ErrNonZeroExit       = errors.New("non-zero exit")
	ErrCancelled         = errors.New("cancelled")
	ErrNoRunnable        = errors.New("no runnable")
	ErrMissingInput      = errors.New("missing input")
	ErrMissingOutput     = errors.New("missing output")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrBaselineMismatch  = errors.New("baseline mismatch")
)

// Error is the single concrete error type of the taxonomy.
type Error struct {
	Class  error
	Reason error
	// Path is the canonical path of the entity the error is about, if any.
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(e.Class.Error())
	if e.Reason != nil {
		sb.WriteString(" (")
		sb.WriteString(e.Reason.Error())
		sb.WriteString(")")
	}
	if e.Path != "" {
		sb.WriteString(" in '")
		sb.WriteString(e.Path)
		sb.WriteString("'")
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is matches both the class and the reason sentinels.
func (e *Error) Is(target error) bool {
	return target == e.Class || (e.Reason != nil && target == e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(class, reason error, path, format string, args ...any) *Error {
	return &Error{Class: class, Reason: reason, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Config builds a ConfigError.
func Config(reason error, path, format string, args ...any) *Error {
	return newf(ErrConfig, reason, path, format, args...)
}

// Dependency builds a DependencyError.
func Dependency(reason error, path, format string, args ...any) *Error {
	return newf(ErrDependency, reason, path, format, args...)
}

// StaleCheckpoint builds a StaleCheckpointError.
func StaleCheckpoint(reason error, path, format string, args ...any) *Error {
	return newf(ErrStaleCheckpoint, reason, path, format, args...)
}

// Resource builds a ResourceError.
func Resource(reason error, path, format string, args ...any) *Error {
	return newf(ErrResource, reason, path, format, args...)
}

// Execution builds an ExecutionError wrapping the underlying cause.
func Execution(reason error, path string, cause error, format string, args ...any) *Error {
	e := newf(ErrExecution, reason, path, format, args...)
	e.Err = cause
	return e
}

// Validation builds a ValidationError.
func Validation(reason error, path, format string, args ...any) *Error {
	return newf(ErrValidation, reason, path, format, args...)
}

// IsSetupFatal reports whether err invalidates the plan itself. Such errors
// stop the whole operation; run-time errors are scoped to a subgraph.
func IsSetupFatal(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, ErrDependency) || errors.Is(err, ErrStaleCheckpoint)
}

// ClassName returns a short, stable name for the class of err, or "" when err
// is not part of the taxonomy. It is what reports and checkpoints record.
func ClassName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return "ConfigError"
	case errors.Is(err, ErrDependency):
		return "DependencyError"
	case errors.Is(err, ErrStaleCheckpoint):
		return "StaleCheckpointError"
	case errors.Is(err, ErrResource):
		return "ResourceError"
	case errors.Is(err, ErrExecution):
		return "ExecutionError"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	default:
		return ""
	}
}
