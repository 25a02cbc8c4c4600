// Package audit provides the append-only, in-memory ledger of enforcement
// decisions. The trail exclusively owns its entries; callers only ever read
// copies. Capacity is bounded: once max entries is exceeded the oldest
// entries are evicted ring-buffer style so long-running processes cannot
// grow without bound.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
)

// DefaultMaxEntries bounds the trail when no explicit capacity is given.
const DefaultMaxEntries = 10_000

// Entry wraps one enforcement decision with caller-supplied context. Never
// mutated after creation.
type Entry struct {
	Sequence uint64            `json:"sequence_number"`
	Decision enforce.Decision  `json:"decision"`
	Context  map[string]string `json:"context,omitempty"`
}

// Trail is the append-only decision ledger for one execution session. The
// internal sequence counter is sequential state: writes are not safe for
// concurrent use without external synchronization.
type Trail struct {
	sessionID  string
	maxEntries int
	entries    []Entry
	seq        uint64
}

// NewTrail returns a trail with the default capacity and a freshly
// generated session ID used to correlate exports across a single run.
func NewTrail() *Trail {
	return NewTrailWithCapacity(DefaultMaxEntries)
}

// NewTrailWithCapacity returns a trail bounded at maxEntries. Non-positive
// capacities fall back to the default.
func NewTrailWithCapacity(maxEntries int) *Trail {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Trail{
		sessionID:  uuid.NewString(),
		maxEntries: maxEntries,
	}
}

// SessionID returns the identifier generated at construction. Clear does
// not reset it.
func (t *Trail) SessionID() string {
	return t.sessionID
}

// Record appends the decision with the given context and returns the stored
// entry. The decision's own sequence number is reused when present;
// otherwise the trail assigns the next monotonic value. When capacity is
// exceeded the oldest entry is evicted.
func (t *Trail) Record(d enforce.Decision, context map[string]string) Entry {
	seq := d.Sequence
	if seq == 0 {
		seq = t.seq + 1
	}
	if seq > t.seq {
		t.seq = seq
	}

	// Copy the context so later caller mutation cannot reach the ledger.
	var ctx map[string]string
	if len(context) > 0 {
		ctx = make(map[string]string, len(context))
		for k, v := range context {
			ctx[k] = v
		}
	}

	e := Entry{Sequence: seq, Decision: d, Context: ctx}
	t.entries = append(t.entries, e)
	if len(t.entries) > t.maxEntries {
		t.entries = t.entries[len(t.entries)-t.maxEntries:]
	}
	return e
}

// Filter narrows an Entries query. Zero-valued fields do not filter; the
// conditions are conjunctive. Limit > 0 returns only the most recent N
// matching entries, still in chronological order.
type Filter struct {
	Outcome enforce.Outcome
	Source  effect.Source
	Limit   int
}

// Entries returns copies of the retained entries matching the filter, in
// non-decreasing sequence order.
func (t *Trail) Entries(f Filter) []Entry {
	matched := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if f.Outcome != "" && e.Decision.Outcome != f.Outcome {
			continue
		}
		if f.Source != "" && e.Decision.Source != f.Source {
			continue
		}
		matched = append(matched, e)
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[len(matched)-f.Limit:]
	}
	return matched
}

// Summary aggregates the retained entries for quick inspection.
type Summary struct {
	SessionID     string                  `json:"session_id"`
	TotalEntries  int                     `json:"total_entries"`
	ByOutcome     map[enforce.Outcome]int `json:"by_outcome"`
	BySource      map[effect.Source]int   `json:"by_source"`
	FirstDecision *time.Time              `json:"first_decision,omitempty"`
	LastDecision  *time.Time              `json:"last_decision,omitempty"`
}

// Summary returns aggregate counts by outcome and source plus the first and
// last decision timestamps of the retained entries.
func (t *Trail) Summary() Summary {
	s := Summary{
		SessionID:    t.sessionID,
		TotalEntries: len(t.entries),
		ByOutcome:    make(map[enforce.Outcome]int),
		BySource:     make(map[effect.Source]int),
	}
	for i := range t.entries {
		e := t.entries[i]
		s.ByOutcome[e.Decision.Outcome]++
		s.BySource[e.Decision.Source]++
		ts := e.Decision.Timestamp
		if i == 0 {
			s.FirstDecision = &ts
		}
		if i == len(t.entries)-1 {
			s.LastDecision = &ts
		}
	}
	return s
}

// Export is the serialized form of a trail: the session ID plus every
// retained (post-eviction) entry.
type Export struct {
	SessionID string  `json:"session_id"`
	Entries   []Entry `json:"entries"`
}

// ExportJSON serializes the session ID and all retained entries as
// pretty-printed JSON for persistence or debugging outside the process.
func (t *Trail) ExportJSON() ([]byte, error) {
	entries := t.Entries(Filter{})
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(Export{SessionID: t.sessionID, Entries: entries}, "", "  ")
}

// Clear discards all entries. The session ID and sequence counter are
// preserved so correlation and ordering stay intact across a clear.
func (t *Trail) Clear() {
	t.entries = nil
}
