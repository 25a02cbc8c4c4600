package inject

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDMode governs how the UUID injector sources its values. Fixed at
// construction.
type UUIDMode string

const (
	// UUIDPassThrough generates real random UUIDs without remembering them.
	UUIDPassThrough UUIDMode = "pass_through"
	// UUIDRecording generates real UUIDs and appends them to an ordered list
	// for manifest capture.
	UUIDRecording UUIDMode = "recording"
	// UUIDReplaying returns a pre-loaded sequence in call order.
	UUIDReplaying UUIDMode = "replaying"
)

// UUID supplies deterministic UUIDs during replay and records generated
// UUIDs during recording. The replay cursor is sequential internal state;
// one injector per execution context.
type UUID struct {
	mode     UUIDMode
	recorded []uuid.UUID
	loaded   []uuid.UUID
	cursor   int
}

// NewUUID returns an injector in pass-through or recording mode.
func NewUUID(mode UUIDMode) *UUID {
	if mode == UUIDReplaying {
		// Replay requires a loaded sequence; an empty one exhausts on the
		// first call, which surfaces the misuse immediately.
		return NewReplayUUID(nil)
	}
	return &UUID{mode: mode}
}

// NewReplayUUID returns an injector that replays the given sequence in
// order.
func NewReplayUUID(sequence []uuid.UUID) *UUID {
	loaded := make([]uuid.UUID, len(sequence))
	copy(loaded, sequence)
	return &UUID{mode: UUIDReplaying, loaded: loaded}
}

// Mode returns the configured mode.
func (u *UUID) Mode() UUIDMode {
	return u.mode
}

// UUID4 returns the next UUID. In replay mode it consumes the next
// unconsumed element of the loaded sequence; calling past the end fails with
// *SequenceExhaustedError rather than fabricating a value, since a fresh
// UUID on exhaustion would silently defeat determinism.
func (u *UUID) UUID4() (uuid.UUID, error) {
	switch u.mode {
	case UUIDReplaying:
		if u.cursor >= len(u.loaded) {
			return uuid.UUID{}, &SequenceExhaustedError{
				Kind:     "uuid",
				Consumed: u.cursor,
				Loaded:   len(u.loaded),
			}
		}
		v := u.loaded[u.cursor]
		u.cursor++
		return v, nil
	case UUIDRecording:
		v := uuid.New()
		u.recorded = append(u.recorded, v)
		return v, nil
	default:
		return uuid.New(), nil
	}
}

// Recorded returns a copy of the ordered list of UUIDs generated in
// recording mode, for manifest capture.
func (u *UUID) Recorded() []uuid.UUID {
	out := make([]uuid.UUID, len(u.recorded))
	copy(out, u.recorded)
	return out
}

// Reset rewinds the replay cursor to the start without discarding the
// loaded sequence. Callers invoke it explicitly between independent runs
// reusing one manifest; the injector never resets itself.
func (u *UUID) Reset() {
	u.cursor = 0
}

// SequenceExhaustedError reports a replay that ran out of pre-recorded
// values. It indicates a recording/replay mismatch and is fatal to the
// current replay run.
type SequenceExhaustedError struct {
	Kind     string
	Consumed int
	Loaded   int
}

func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("replay %s sequence exhausted: %d of %d recorded values already consumed",
		e.Kind, e.Consumed, e.Loaded)
}
