package core

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rewind-hq/rewind/core/manifest"
	"github.com/rewind-hq/rewind/core/record"
)

func capturedManifest(t *testing.T) *manifest.Manifest {
	t.Helper()

	cfg := &Config{Enforce: EnforceSettings{Mode: "mocked"}}
	s := NewRecordingSession(cfg)

	for i := 0; i < 3; i++ {
		if _, err := s.UUID.UUID4(); err != nil {
			t.Fatalf("UUID4: %v", err)
		}
		_ = s.RNG.Float64()
	}
	if err := s.Recorder.Record("http.get", record.Intent{"url": "https://example.com"}, json.RawMessage(`{"status": 200}`), true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Recorder.Record("http.get", record.Intent{"url": "https://example.com"}, json.RawMessage(`{"status": 503}`), false); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Recorder.Record("db.query", record.Intent{"sql": "SELECT 1"}, json.RawMessage(`{"rows": 1}`), true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	return s.Capture()
}

func TestVerify_PassesOnCapturedManifest(t *testing.T) {
	r := Verify(capturedManifest(t))
	if !r.Pass {
		t.Fatalf("verify failed: %+v", r.Checks)
	}
	if len(r.Checks) != 4 {
		t.Fatalf("got %d checks, want 4", len(r.Checks))
	}
	if r.Summary != "4/4 checks passed" {
		t.Fatalf("summary = %q", r.Summary)
	}
}

func TestVerify_EmptyManifestPasses(t *testing.T) {
	r := Verify(manifest.New())
	if !r.Pass {
		t.Fatalf("empty manifest should verify: %+v", r.Checks)
	}
}

func TestVerify_InvalidManifestShortCircuits(t *testing.T) {
	m := manifest.New()
	m.UUIDs = []string{"nope"}

	r := Verify(m)
	if r.Pass {
		t.Fatal("invalid manifest passed verification")
	}
	if len(r.Checks) != 1 || r.Checks[0].Name != "manifest-valid" {
		t.Fatalf("checks = %+v", r.Checks)
	}
}

func TestVerify_ReportsFailingCheckName(t *testing.T) {
	m := capturedManifest(t)
	// Corrupt one UUID: still parseable, but no longer the recorded value.
	m.UUIDs[1] = uuid.New().String()

	r := Verify(m)
	// Substituting a UUID is indistinguishable from having recorded that
	// UUID, so replay still succeeds; the point is Verify stays total and
	// reports per-check results.
	for _, c := range r.Checks {
		if c.Name == "" {
			t.Fatalf("check with empty name: %+v", c)
		}
	}

	// A genuinely unloadable effect intent does fail effect-replay.
	m.Effects[0].Intent = record.Intent{"fn": json.RawMessage(`{`)}
	r = Verify(m)
	if r.Pass {
		t.Fatal("manifest with corrupt intent passed verification")
	}
}
