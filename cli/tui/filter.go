package tui

import (
	"strings"

	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
)

// outcomeOrder defines the cycle order for the outcome filter toggle.
var outcomeOrder = []enforce.Outcome{
	enforce.OutcomeBlocked,
	enforce.OutcomeWarned,
	enforce.OutcomeMocked,
	enforce.OutcomeAllowed,
}

// sourceOrder defines the cycle order for the source filter toggle.
var sourceOrder = effect.Sources()

// filterState tracks the active filter configuration.
type filterState struct {
	outcomeIdx int    // -1 = all, otherwise index into outcomeOrder
	sourceIdx  int    // -1 = all, otherwise index into sourceOrder
	search     string // free-text search query
	searching  bool   // true when search input is active
}

func newFilterState() filterState {
	return filterState{outcomeIdx: -1, sourceIdx: -1}
}

// cycleOutcome advances the outcome filter to the next value.
func (f *filterState) cycleOutcome() {
	f.outcomeIdx++
	if f.outcomeIdx >= len(outcomeOrder) {
		f.outcomeIdx = -1
	}
}

// cycleSource advances the source filter to the next category.
func (f *filterState) cycleSource() {
	f.sourceIdx++
	if f.sourceIdx >= len(sourceOrder) {
		f.sourceIdx = -1
	}
}

// activeOutcome returns the current outcome filter, or "all".
func (f *filterState) activeOutcome() string {
	if f.outcomeIdx < 0 {
		return "all"
	}
	return string(outcomeOrder[f.outcomeIdx])
}

// activeSource returns the current source filter, or "all".
func (f *filterState) activeSource() string {
	if f.sourceIdx < 0 {
		return "all"
	}
	return string(sourceOrder[f.sourceIdx])
}

// matchesEntry returns true if the entry passes all active filters.
func (f *filterState) matchesEntry(e audit.Entry) bool {
	if f.outcomeIdx >= 0 && e.Decision.Outcome != outcomeOrder[f.outcomeIdx] {
		return false
	}
	if f.sourceIdx >= 0 && e.Decision.Source != sourceOrder[f.sourceIdx] {
		return false
	}

	// Search filter: effect type and context values.
	if f.search != "" {
		q := strings.ToLower(f.search)
		if strings.Contains(strings.ToLower(string(e.Decision.EffectType)), q) {
			return true
		}
		for k, v := range e.Context {
			if strings.Contains(strings.ToLower(k), q) || strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
		return false
	}

	return true
}

// filterEntries returns entries that pass the active filters.
func (f *filterState) filterEntries(all []audit.Entry) []audit.Entry {
	var result []audit.Entry
	for _, e := range all {
		if f.matchesEntry(e) {
			result = append(result, e)
		}
	}
	return result
}
