package core

import (
	"fmt"

	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
	"github.com/rewind-hq/rewind/core/inject"
	"github.com/rewind-hq/rewind/core/manifest"
	"github.com/rewind-hq/rewind/core/record"
)

// Session is one full set of enforcement components — enforcer, injectors,
// recorder, and audit trail — owned by a single logical execution context.
// Sessions are constructed for the duration of one pipeline execution and
// discarded afterward; they are never shared across concurrent workers.
type Session struct {
	Enforcer *enforce.Enforcer
	Time     *inject.Time
	RNG      *inject.RNG
	UUID     *inject.UUID
	Recorder *record.Recorder
	Trail    *audit.Trail
}

// NewSession returns a production pass-through session: real clock, random
// seed, untracked UUIDs, inert recorder. Nothing about such a session is
// reproducible; it exists for permissive-mode runs that only want the audit
// trail.
func NewSession(cfg *Config) *Session {
	return &Session{
		Enforcer: enforce.New(cfg.Mode(), enforce.WithClassifier(cfg.Classifier())),
		Time:     inject.NewWallClockTime(),
		RNG:      inject.NewRandomRNG(),
		UUID:     inject.NewUUID(inject.UUIDPassThrough),
		Recorder: record.NewRecorder(record.ModePassThrough),
		Trail:    audit.NewTrailWithCapacity(cfg.Audit.MaxEntries),
	}
}

// NewRecordingSession returns a session that captures everything needed for
// later replay: the clock is frozen at the session's start instant, the RNG
// seed is generated securely and retained, and UUIDs and external effect
// outcomes are remembered in call order.
func NewRecordingSession(cfg *Config) *Session {
	t := inject.NewWallClockTime()
	frozen := inject.NewFixedTime(t.Now())
	return &Session{
		Enforcer: enforce.New(cfg.Mode(),
			enforce.WithClassifier(cfg.Classifier()),
			enforce.WithClock(frozen.Now)),
		Time:     frozen,
		RNG:      inject.NewRandomRNG(),
		UUID:     inject.NewUUID(inject.UUIDRecording),
		Recorder: record.NewRecorder(record.ModeRecording),
		Trail:    audit.NewTrailWithCapacity(cfg.Audit.MaxEntries),
	}
}

// NewReplaySession reconstructs a session from a captured manifest. Every
// injector serves the recorded values; a pipeline driven through this
// session observes bit-identical outcomes to the recording run.
func NewReplaySession(cfg *Config, m *manifest.Manifest) (*Session, error) {
	uuids, err := m.ParsedUUIDs()
	if err != nil {
		return nil, fmt.Errorf("building replay session: %w", err)
	}
	recorder, err := record.NewReplayRecorder(m.Effects)
	if err != nil {
		return nil, fmt.Errorf("building replay session: %w", err)
	}

	var t *inject.Time
	if at, ok := m.ParsedFixedTime(); ok {
		t = inject.NewFixedTime(at)
	} else {
		t = inject.NewWallClockTime()
	}

	return &Session{
		Enforcer: enforce.New(cfg.Mode(),
			enforce.WithClassifier(cfg.Classifier()),
			enforce.WithClock(t.Now)),
		Time:     t,
		RNG:      inject.NewRNG(m.RNGSeed),
		UUID:     inject.NewReplayUUID(uuids),
		Recorder: recorder,
		Trail:    audit.NewTrailWithCapacity(cfg.Audit.MaxEntries),
	}, nil
}

// Enforce asks the enforcer for a decision and records it in the session's
// audit trail with the given context. This is the caller-side wiring the
// enforcer itself deliberately lacks: enforcement stays decoupled from
// audit policy, and sessions that want different audit behavior call
// s.Enforcer.Enforce directly.
func (s *Session) Enforce(effectType effect.Type, context map[string]string) (enforce.Decision, error) {
	d, err := s.Enforcer.Enforce(effectType)
	if d.Sequence != 0 {
		s.Trail.Record(d, context)
	}
	return d, err
}

// Capture exports the session's deterministic state as a replay manifest.
// Meaningful after a recording run; the caller persists the result.
func (s *Session) Capture() *manifest.Manifest {
	m := manifest.New()
	m.RNGSeed = s.RNG.Seed()
	if at, ok := s.Time.Fixed(); ok {
		m.SetFixedTime(at)
	}
	m.SetUUIDs(s.UUID.Recorded())
	m.Effects = s.Recorder.Records()
	return m
}
