// Package baseline compares a step's declared baseline files against a
// reference run and yields a PASS/FAIL annotation. The annotation never
// changes the step's run state.
package baseline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
)

// Status is the comparison outcome. The zero value means no comparison ran.
type Status string

const (
	StatusNone Status = ""
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Result is the annotation attached to a step record.
type Result struct {
	Status Status
	// Err is a ValidationError naming the first mismatch, set on FAIL.
	Err error
}

// Enabled reports whether the step asks for comparison: it declares baseline
// files and its config does not turn "baseline:enabled" off. Setup refuses a
// malformed switch; one that slips through counts as off.
func Enabled(step *model.Step) bool {
	if len(step.Baseline) == 0 {
		return false
	}
	if step.Config == nil || !step.Config.Has("baseline", "enabled") {
		return true
	}
	on, err := step.Config.GetBool("baseline", "enabled")
	return err == nil && on
}

// ReferenceDir is where a step's reference files live below root.
func ReferenceDir(root, component string, step *model.Step) string {
	return step.Path.FromSlash(filepath.Join(root, component))
}

// Compare checks every baseline file of step in stepDir against the copy in
// referenceDir by content digest.
func Compare(ctx context.Context, step *model.Step, stepDir, referenceDir string) Result {
	logger := ctxlog.FromContext(ctx)
	id := step.ID()
	for _, rel := range step.Baseline {
		name := filepath.FromSlash(rel)
		got, err := digest(filepath.Join(stepDir, name))
		if err != nil {
			return fail(id, "output %q unreadable: %v", rel, err)
		}
		want, err := digest(filepath.Join(referenceDir, name))
		if err != nil {
			return fail(id, "reference %q unreadable: %v", rel, err)
		}
		if got != want {
			return fail(id, "%q differs from reference (%s != %s)", rel, short(got), short(want))
		}
		logger.Debug("Baseline file matches.", "step", id, "file", rel)
	}
	return Result{Status: StatusPass}
}

func fail(id, format string, args ...any) Result {
	return Result{
		Status: StatusFail,
		Err:    faults.Validation(faults.ErrBaselineMismatch, id, format, args...),
	}
}

func digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func short(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
