package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rewind-hq/rewind/core/effect"
)

// Mode governs whether the recorder captures fresh outcomes or serves
// previously captured ones. Fixed at construction.
type Mode string

const (
	// ModePassThrough neither records nor replays; the recorder is inert.
	ModePassThrough Mode = "pass_through"
	// ModeRecording appends each observed outcome as a new EffectRecord.
	ModeRecording Mode = "recording"
	// ModeReplaying serves stored outcomes by structural intent match.
	ModeReplaying Mode = "replaying"
)

// EffectRecord is one captured external effect outcome. Result is an opaque
// serializable payload; the recorder never interprets it.
type EffectRecord struct {
	EffectType effect.Type     `json:"effect_type"`
	Intent     Intent          `json:"intent"`
	Result     json.RawMessage `json:"result"`
	Success    bool            `json:"success"`
	Sequence   uint64          `json:"sequence_number"`
}

// slot pairs a stored record with its lookup key and consumption marker.
type slot struct {
	rec      EffectRecord
	key      string
	consumed bool
}

// Recorder is the record/replay store for opaque external effects. Replay
// lookups match by (effect type, canonical intent) and consume records
// FIFO within each matching key. Sequential internal state: one recorder
// per execution context.
type Recorder struct {
	mode  Mode
	slots []slot
	seq   uint64
}

// NewRecorder returns a recorder in the given mode with no stored records.
func NewRecorder(mode Mode) *Recorder {
	return &Recorder{mode: mode}
}

// NewReplayRecorder returns a recorder in replaying mode pre-loaded with the
// given records, typically from a manifest. Records with unserializable
// intents are rejected.
func NewReplayRecorder(records []EffectRecord) (*Recorder, error) {
	r := &Recorder{mode: ModeReplaying}
	for _, rec := range records {
		key, err := IntentKey(rec.EffectType, rec.Intent)
		if err != nil {
			return nil, fmt.Errorf("loading record %d (%s): %w", rec.Sequence, rec.EffectType, err)
		}
		r.slots = append(r.slots, slot{rec: rec, key: key})
	}
	return r, nil
}

// Mode returns the configured recorder mode.
func (r *Recorder) Mode() Mode {
	return r.mode
}

// Record captures one external effect outcome. Valid only in recording
// mode; anywhere else it fails with *ModeMismatchError, a programmer error
// that must not be silently ignored.
func (r *Recorder) Record(effectType effect.Type, intent Intent, result json.RawMessage, success bool) error {
	if r.mode != ModeRecording {
		return &ModeMismatchError{Op: "Record", Mode: r.mode, Want: ModeRecording}
	}
	if err := effectType.Validate(); err != nil {
		return err
	}
	key, err := IntentKey(effectType, intent)
	if err != nil {
		return err
	}

	r.seq++
	r.slots = append(r.slots, slot{
		rec: EffectRecord{
			EffectType: effectType,
			Intent:     intent,
			Result:     result,
			Success:    success,
			Sequence:   r.seq,
		},
		key: key,
	})
	return nil
}

// RequireReplayResult returns the result of the first unconsumed record
// whose (effect type, canonical intent) matches the request, and marks it
// consumed. Consumption is atomic: on any error nothing changes. Valid only
// in replaying mode. A request with no unconsumed structural match fails
// with *NotFoundError carrying full diagnostics — never a silently empty
// result.
func (r *Recorder) RequireReplayResult(effectType effect.Type, intent Intent) (json.RawMessage, error) {
	if r.mode != ModeReplaying {
		return nil, &ModeMismatchError{Op: "RequireReplayResult", Mode: r.mode, Want: ModeReplaying}
	}
	if err := effectType.Validate(); err != nil {
		return nil, err
	}
	key, err := IntentKey(effectType, intent)
	if err != nil {
		return nil, err
	}

	for i := range r.slots {
		if r.slots[i].consumed || r.slots[i].key != key {
			continue
		}
		r.slots[i].consumed = true
		return r.slots[i].rec.Result, nil
	}

	return nil, &NotFoundError{
		EffectType:     effectType,
		IntentKeys:     intent.Keys(),
		TotalRecords:   len(r.slots),
		AvailableTypes: r.availableTypes(),
	}
}

// Records returns a read-only snapshot of all stored records in sequence
// order, independent of mode. Used for manifest export.
func (r *Recorder) Records() []EffectRecord {
	out := make([]EffectRecord, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.rec
	}
	return out
}

// Reset clears all consumption markers so a replay recorder can serve the
// same manifest again. Callers invoke it explicitly between runs; the
// recorder never resets itself.
func (r *Recorder) Reset() {
	for i := range r.slots {
		r.slots[i].consumed = false
	}
}

// availableTypes returns the deduplicated, sorted effect types present in
// the store, for error diagnostics.
func (r *Recorder) availableTypes() []string {
	seen := make(map[string]struct{}, len(r.slots))
	var types []string
	for _, s := range r.slots {
		et := string(s.rec.EffectType)
		if _, ok := seen[et]; ok {
			continue
		}
		seen[et] = struct{}{}
		types = append(types, et)
	}
	sort.Strings(types)
	return types
}

// ModeMismatchError reports a recording-only or replay-only method called in
// the wrong mode. Always fatal; retrying without reconstructing the
// recorder reproduces the same error.
type ModeMismatchError struct {
	Op   string
	Mode Mode
	Want Mode
}

func (e *ModeMismatchError) Error() string {
	return fmt.Sprintf("recorder %s called in %s mode, requires %s mode", e.Op, e.Mode, e.Want)
}

// NotFoundError reports a replay request with no unconsumed structurally
// matching record. The diagnostics identify what was requested and what the
// store actually holds, which is the information needed to debug a
// recording/replay mismatch.
type NotFoundError struct {
	EffectType     effect.Type
	IntentKeys     []string
	TotalRecords   int
	AvailableTypes []string
}

func (e *NotFoundError) Error() string {
	available := "none"
	if len(e.AvailableTypes) > 0 {
		available = strings.Join(e.AvailableTypes, ", ")
	}
	return fmt.Sprintf("no unconsumed record for effect %q with intent keys [%s]: %d records stored, available effect types: %s",
		string(e.EffectType), strings.Join(e.IntentKeys, ", "), e.TotalRecords, available)
}
