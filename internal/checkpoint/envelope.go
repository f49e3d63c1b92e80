package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/fsutil"
	"github.com/specialistvlad/suitegrid/internal/version"
)

// SchemaVersion is bumped whenever a descriptor's shape changes.
const SchemaVersion = 1

// Descriptor kinds.
const (
	KindPlan = "plan"
	KindTask = "task"
	KindStep = "step"
)

// File names of the descriptors.
const (
	PlanFile = "plan.json"
	TaskFile = "task.json"
	StepFile = "step.json"
)

// header is the part of an envelope read before anything else.
type header struct {
	SchemaVersion    int    `json:"schema_version"`
	FrameworkVersion string `json:"framework_version"`
	Kind             string `json:"kind"`
}

// envelope is the on-disk shape of every descriptor.
type envelope struct {
	SchemaVersion    int             `json:"schema_version"`
	FrameworkVersion string          `json:"framework_version"`
	Kind             string          `json:"kind"`
	Digest           string          `json:"digest"`
	Payload          json.RawMessage `json:"payload"`
}

func digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// writeDescriptor marshals payload into an envelope and writes it atomically.
func writeDescriptor(path, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s checkpoint: %w", kind, err)
	}
	env := envelope{
		SchemaVersion:    SchemaVersion,
		FrameworkVersion: version.Version,
		Kind:             kind,
		Digest:           digest(body),
		Payload:          body,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s checkpoint: %w", kind, err)
	}
	data = append(data, '\n')
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s checkpoint %s: %w", kind, path, err)
	}
	return nil
}

// readDescriptor validates the header, the envelope and the digest of the
// descriptor at path and then decodes its payload strictly into out.
func readDescriptor(path, kind string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s checkpoint: %w", kind, err)
	}

	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return faults.StaleCheckpoint(faults.ErrSchemaVersion, path, "unreadable checkpoint header: %v", err)
	}
	if h.SchemaVersion != SchemaVersion {
		return faults.StaleCheckpoint(faults.ErrSchemaVersion, path,
			"schema version %d, this framework reads version %d; run setup again", h.SchemaVersion, SchemaVersion)
	}
	if h.FrameworkVersion != version.Version {
		return faults.StaleCheckpoint(faults.ErrSchemaVersion, path,
			"written by framework %q, running %q; run setup again", h.FrameworkVersion, version.Version)
	}
	if h.Kind != kind {
		return faults.StaleCheckpoint(faults.ErrSchemaVersion, path, "expected a %s checkpoint, found kind %q", kind, h.Kind)
	}

	var env envelope
	if err := decodeStrict(data, &env); err != nil {
		return faults.StaleCheckpoint(faults.ErrSchemaVersion, path, "malformed envelope: %v", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, env.Payload); err != nil {
		return faults.StaleCheckpoint(faults.ErrDigest, path, "malformed payload: %v", err)
	}
	if got := digest(compact.Bytes()); got != env.Digest {
		return faults.StaleCheckpoint(faults.ErrDigest, path, "payload was modified after setup (digest %s, recorded %s)", got, env.Digest)
	}
	if err := decodeStrict(compact.Bytes(), out); err != nil {
		return faults.StaleCheckpoint(faults.ErrSchemaVersion, path, "payload does not match schema version %d: %v", SchemaVersion, err)
	}
	return nil
}

// decodeStrict rejects unknown fields and trailing content.
func decodeStrict(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
