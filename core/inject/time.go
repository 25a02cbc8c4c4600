// Package inject provides deterministic substitutes for non-deterministic
// value sources: wall-clock time, pseudo-random numbers, and UUIDs. One
// injector set is constructed per logical execution context; none of the
// injectors are safe for concurrent mutation from multiple contexts.
package inject

import "time"

// Time supplies the "current time" for a pipeline execution. It is either
// frozen at a fixed instant (reproducible) or passes through to the real
// clock (production, not reproducible).
type Time struct {
	fixed time.Time
}

// NewFixedTime returns an injector frozen at the given instant. Every call
// to Now returns the same value, which is itself the recorded value: replay
// reconstructs the injector from the manifest's captured instant.
func NewFixedTime(at time.Time) *Time {
	return &Time{fixed: at}
}

// NewWallClockTime returns a passthrough injector backed by the real clock.
// Only used when no replay is needed.
func NewWallClockTime() *Time {
	return &Time{}
}

// Now returns the configured instant, or the real current time in
// passthrough mode.
func (t *Time) Now() time.Time {
	if t.fixed.IsZero() {
		return time.Now()
	}
	return t.fixed
}

// Fixed reports whether the injector is frozen, and at what instant.
func (t *Time) Fixed() (time.Time, bool) {
	return t.fixed, !t.fixed.IsZero()
}
