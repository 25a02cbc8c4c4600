// Package manifest defines the serialized replay bundle: the RNG seed,
// fixed time, UUID sequence, and effect records needed to reproduce a prior
// run exactly. The core keeps no durable state of its own — persisting and
// reloading the manifest between a recording run and its replays is an
// explicit caller action, and this package is that caller surface.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rewind-hq/rewind/core/record"
)

const schemaVersion = "1.0.0"

// Manifest is the JSON-compatible replay bundle captured from a recording
// session.
type Manifest struct {
	SchemaVersion string                `json:"schema_version"`
	RNGSeed       int64                 `json:"rng_seed"`
	FixedTime     string                `json:"fixed_time,omitempty"`
	UUIDs         []string              `json:"uuids"`
	Effects       []record.EffectRecord `json:"effects"`
}

// New returns an empty manifest with the current schema version.
func New() *Manifest {
	return &Manifest{SchemaVersion: schemaVersion}
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating manifest %s: %w", path, err)
	}
	return &m, nil
}

// Save writes the manifest to path using atomic temp-file + rename, so a
// crashed writer never leaves a truncated manifest behind.
func (m *Manifest) Save(path string) error {
	m.SchemaVersion = schemaVersion

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming manifest file: %w", err)
	}

	return nil
}

// Validate checks that every stored value can actually drive a replay: a
// supported schema version, parseable UUIDs, a parseable fixed time, and
// well-formed effect records.
func (m *Manifest) Validate() error {
	if m.SchemaVersion == "" {
		return fmt.Errorf("missing schema_version")
	}
	if !strings.HasPrefix(m.SchemaVersion, "1.") {
		return fmt.Errorf("unsupported schema_version %q, this build reads 1.x", m.SchemaVersion)
	}
	if m.FixedTime != "" {
		if _, err := time.Parse(time.RFC3339Nano, m.FixedTime); err != nil {
			return fmt.Errorf("fixed_time %q: %w", m.FixedTime, err)
		}
	}
	for i, u := range m.UUIDs {
		if _, err := uuid.Parse(u); err != nil {
			return fmt.Errorf("uuids[%d] %q: %w", i, u, err)
		}
	}
	for i, rec := range m.Effects {
		if err := rec.EffectType.Validate(); err != nil {
			return fmt.Errorf("effects[%d]: %w", i, err)
		}
	}
	return nil
}

// SetFixedTime stores the instant in RFC3339 nanosecond form.
func (m *Manifest) SetFixedTime(at time.Time) {
	m.FixedTime = at.UTC().Format(time.RFC3339Nano)
}

// ParsedFixedTime returns the captured instant, or ok=false when the
// manifest carries none.
func (m *Manifest) ParsedFixedTime() (time.Time, bool) {
	if m.FixedTime == "" {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, m.FixedTime)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// SetUUIDs stores the recorded UUID sequence in call order.
func (m *Manifest) SetUUIDs(seq []uuid.UUID) {
	m.UUIDs = make([]string, len(seq))
	for i, u := range seq {
		m.UUIDs[i] = u.String()
	}
}

// ParsedUUIDs returns the stored UUID sequence in call order.
func (m *Manifest) ParsedUUIDs() ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(m.UUIDs))
	for i, s := range m.UUIDs {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("uuids[%d] %q: %w", i, s, err)
		}
		out[i] = u
	}
	return out, nil
}
