// Package enforce implements the effect enforcement policy: it classifies
// effect types, applies the configured enforcement mode, and produces
// immutable Decision records. The enforcer itself is side-effect free — it
// never consumes deterministic values and never writes to the audit trail;
// both are explicit follow-up calls made by the pipeline after it receives
// a decision.
package enforce

import (
	"fmt"
	"time"

	"github.com/rewind-hq/rewind/core/effect"
)

// Mode is the enforcement policy applied to non-deterministic effects. It is
// fixed for the lifetime of an Enforcer; switching modes means constructing
// a new Enforcer.
type Mode string

const (
	// ModeStrict blocks every non-deterministic effect.
	ModeStrict Mode = "strict"
	// ModeWarn allows all effects but flags non-deterministic ones.
	ModeWarn Mode = "warn"
	// ModePermissive allows everything; visibility comes from the audit trail.
	ModePermissive Mode = "permissive"
	// ModeMocked allows non-deterministic effects on the assumption that a
	// matching injector or recorder supplies the value.
	ModeMocked Mode = "mocked"
)

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeStrict, ModeWarn, ModePermissive, ModeMocked:
		return true
	}
	return false
}

// Modes returns all enforcement modes in display order.
func Modes() []Mode {
	return []Mode{ModeStrict, ModeWarn, ModePermissive, ModeMocked}
}

// Outcome is the result of a single enforcement decision.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeBlocked Outcome = "blocked"
	OutcomeWarned  Outcome = "warned"
	OutcomeMocked  Outcome = "mocked"
)

// Decision is the immutable result of asking "is this effect allowed right
// now?". Sequence numbers are assigned monotonically per Enforcer in call
// order and are never reused.
type Decision struct {
	EffectType effect.Type   `json:"effect_type"`
	Source     effect.Source `json:"source"`
	Mode       Mode          `json:"mode"`
	Outcome    Outcome       `json:"outcome"`
	Timestamp  time.Time     `json:"timestamp"`
	Sequence   uint64        `json:"sequence_number"`
}

// Enforcer applies one enforcement mode to classified effect types. It is
// not safe for concurrent use: the sequence counter is sequential internal
// state, so callers needing concurrency construct one Enforcer per logical
// execution context.
type Enforcer struct {
	mode       Mode
	classifier *effect.Classifier
	clock      func() time.Time
	seq        uint64
}

// Option configures an Enforcer.
type Option func(*Enforcer)

// WithClassifier replaces the default classifier, e.g. to add custom
// classification rules from config.
func WithClassifier(c *effect.Classifier) Option {
	return func(e *Enforcer) { e.classifier = c }
}

// WithClock overrides the decision timestamp source. Used by replay sessions
// so that decision timestamps come from the time injector, and by tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Enforcer) { e.clock = clock }
}

// New creates an Enforcer for the given mode. Invalid modes fall back to
// strict, the conservative default.
func New(mode Mode, opts ...Option) *Enforcer {
	if !mode.Valid() {
		mode = ModeStrict
	}
	e := &Enforcer{
		mode:       mode,
		classifier: effect.NewClassifier(),
		clock:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Mode returns the configured enforcement mode.
func (e *Enforcer) Mode() Mode {
	return e.mode
}

// Enforce classifies the effect type and applies the mode policy. On a
// strict-mode block it returns the blocked Decision together with a
// *BlockedError; every other combination returns a nil error. Enforce never
// mutates injectors or recorders — consuming a deterministic value is a
// separate call the pipeline makes after receiving the decision.
func (e *Enforcer) Enforce(effectType effect.Type) (Decision, error) {
	if err := effectType.Validate(); err != nil {
		return Decision{}, err
	}

	source := e.classifier.Classify(effectType)

	e.seq++
	d := Decision{
		EffectType: effectType,
		Source:     source,
		Mode:       e.mode,
		Timestamp:  e.clock(),
		Sequence:   e.seq,
	}

	if source.Deterministic() {
		d.Outcome = OutcomeAllowed
		return d, nil
	}

	switch e.mode {
	case ModeStrict:
		d.Outcome = OutcomeBlocked
		return d, &BlockedError{EffectType: effectType, Source: source, Mode: e.mode}
	case ModeWarn:
		d.Outcome = OutcomeWarned
		return d, nil
	case ModePermissive:
		d.Outcome = OutcomeAllowed
		return d, nil
	case ModeMocked:
		d.Outcome = OutcomeMocked
		return d, nil
	default:
		// Unreachable: New rejects invalid modes.
		d.Outcome = OutcomeBlocked
		return d, &BlockedError{EffectType: effectType, Source: source, Mode: e.mode}
	}
}

// BlockedError reports a non-deterministic effect rejected under strict
// mode. It is not retryable as-is: the fix is to inject the appropriate
// deterministic service for the effect, or to reconfigure the mode.
type BlockedError struct {
	EffectType effect.Type
	Source     effect.Source
	Mode       Mode
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("effect %q (source %s) blocked under %s mode: inject a deterministic %s service or relax the enforcement mode",
		string(e.EffectType), e.Source, e.Mode, e.Source)
}
