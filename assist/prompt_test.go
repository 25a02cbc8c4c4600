package assist

import (
	"strings"
	"testing"
	"time"

	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
)

// TestFormatEntries_Empty tests formatEntries with an empty entry list.
func TestFormatEntries_Empty(t *testing.T) {
	got := formatEntries(nil)
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

// TestFormatEntries_SingleEntry tests basic formatting of a single entry.
func TestFormatEntries_SingleEntry(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entries := []audit.Entry{
		{
			Sequence: 7,
			Decision: enforce.Decision{
				EffectType: "time.now",
				Source:     effect.SourceTime,
				Mode:       enforce.ModeStrict,
				Outcome:    enforce.OutcomeBlocked,
				Timestamp:  ts,
				Sequence:   7,
			},
		},
	}

	got := formatEntries(entries)

	if !strings.Contains(got, "Sequence: 7") {
		t.Error("expected sequence in output")
	}
	if !strings.Contains(got, "Effect type: time.now") {
		t.Error("expected effect type in output")
	}
	if !strings.Contains(got, "Source: time") {
		t.Error("expected source in output")
	}
	if !strings.Contains(got, "Mode: strict") {
		t.Error("expected mode in output")
	}
	if !strings.Contains(got, "Outcome: blocked") {
		t.Error("expected outcome in output")
	}
	if !strings.Contains(got, "Time: 2026-03-14T09:26:53Z") {
		t.Error("expected timestamp in output")
	}
}

// TestFormatEntries_WithContext tests formatting with context fields.
func TestFormatEntries_WithContext(t *testing.T) {
	entries := []audit.Entry{
		{
			Sequence: 1,
			Decision: enforce.Decision{
				EffectType: "network.http",
				Source:     effect.SourceNetwork,
				Mode:       enforce.ModeWarn,
				Outcome:    enforce.OutcomeWarned,
				Sequence:   1,
			},
			Context: map[string]string{
				"url":    "https://api.example.com",
				"method": "GET",
			},
		},
	}

	got := formatEntries(entries)

	if !strings.Contains(got, "Context url: https://api.example.com") {
		t.Error("expected url context in output")
	}
	if !strings.Contains(got, "Context method: GET") {
		t.Error("expected method context in output")
	}
}

// TestFormatEntries_MultipleEntriesWithSeparator tests that multiple entries
// are separated by "---".
func TestFormatEntries_MultipleEntriesWithSeparator(t *testing.T) {
	entries := []audit.Entry{
		{
			Sequence: 1,
			Decision: enforce.Decision{
				EffectType: "random.float",
				Source:     effect.SourceRandom,
				Mode:       enforce.ModeStrict,
				Outcome:    enforce.OutcomeBlocked,
				Sequence:   1,
			},
		},
		{
			Sequence: 2,
			Decision: enforce.Decision{
				EffectType: "uuid.v4",
				Source:     effect.SourceUUID,
				Mode:       enforce.ModeStrict,
				Outcome:    enforce.OutcomeBlocked,
				Sequence:   2,
			},
		},
	}

	got := formatEntries(entries)

	if !strings.Contains(got, "---") {
		t.Error("expected separator between entries")
	}
	if !strings.Contains(got, "Effect type: random.float") {
		t.Error("expected first effect type")
	}
	if !strings.Contains(got, "Effect type: uuid.v4") {
		t.Error("expected second effect type")
	}
}

// TestFormatEntries_ZeroTimestampOmitted tests that Time is omitted when the
// decision carries no timestamp.
func TestFormatEntries_ZeroTimestampOmitted(t *testing.T) {
	entries := []audit.Entry{
		{
			Sequence: 1,
			Decision: enforce.Decision{
				EffectType: "filesystem.read",
				Source:     effect.SourceFilesystem,
				Mode:       enforce.ModePermissive,
				Outcome:    enforce.OutcomeAllowed,
				Sequence:   1,
			},
		},
	}

	got := formatEntries(entries)

	if strings.Contains(got, "Time:") {
		t.Error("Time should be omitted when timestamp is zero")
	}
}

// TestFormatContext_EmptyExport tests formatContext with an empty export.
func TestFormatContext_EmptyExport(t *testing.T) {
	export := &audit.Export{SessionID: "abc"}

	got := formatContext(export)

	if !strings.Contains(got, "Total entries: 0") {
		t.Error("expected 'Total entries: 0'")
	}
	if strings.Contains(got, "Effects by source:") {
		t.Error("should not mention sources when no entries exist")
	}
}

// TestFormatContext_WithEntries tests formatContext with entries of various
// outcomes and sources.
func TestFormatContext_WithEntries(t *testing.T) {
	mk := func(seq uint64, src effect.Source, outcome enforce.Outcome) audit.Entry {
		return audit.Entry{
			Sequence: seq,
			Decision: enforce.Decision{
				EffectType: effect.Type(string(src) + ".op"),
				Source:     src,
				Mode:       enforce.ModeStrict,
				Outcome:    outcome,
				Sequence:   seq,
			},
		}
	}

	export := &audit.Export{
		SessionID: "session-1",
		Entries: []audit.Entry{
			mk(1, effect.SourceTime, enforce.OutcomeBlocked),
			mk(2, effect.SourceRandom, enforce.OutcomeBlocked),
			mk(3, effect.SourceCompute, enforce.OutcomeAllowed),
			mk(4, effect.SourceNetwork, enforce.OutcomeWarned),
		},
	}

	got := formatContext(export)

	if !strings.Contains(got, "Session ID: session-1") {
		t.Error("expected session ID")
	}
	if !strings.Contains(got, "Total entries: 4") {
		t.Error("expected 'Total entries: 4'")
	}
	if !strings.Contains(got, "blocked: 2") {
		t.Error("expected blocked count")
	}
	if !strings.Contains(got, "warned: 1") {
		t.Error("expected warned count")
	}
	if !strings.Contains(got, "allowed: 1") {
		t.Error("expected allowed count")
	}
	if !strings.Contains(got, "Effects by source:") {
		t.Error("expected sources section")
	}
	if !strings.Contains(got, "time: 1") {
		t.Error("expected time source count")
	}
}

// TestSystemPrompt tests that systemPrompt returns a non-empty string with
// expected content.
func TestSystemPrompt(t *testing.T) {
	got := systemPrompt()

	if got == "" {
		t.Fatal("expected non-empty system prompt")
	}
	if !strings.Contains(got, "deterministic") {
		t.Error("expected 'deterministic' in system prompt")
	}
	if !strings.Contains(got, "JSON") {
		t.Error("expected 'JSON' in system prompt")
	}
}

// TestSummaryPrompt tests that summaryPrompt produces correct output.
func TestSummaryPrompt(t *testing.T) {
	explanations := []EntryExplanation{
		{EffectType: "time.now", Outcome: "blocked", Title: "Clock read", Explanation: "Direct clock access"},
		{EffectType: "random.float", Outcome: "blocked", Title: "Raw randomness", Explanation: "Unseeded RNG draw"},
	}

	got := summaryPrompt(explanations)

	if !strings.Contains(got, "executive summary") {
		t.Error("expected 'executive summary' in prompt")
	}
	if !strings.Contains(got, "time.now") {
		t.Error("expected effect type time.now")
	}
	if !strings.Contains(got, "random.float") {
		t.Error("expected effect type random.float")
	}
	if !strings.Contains(got, "Clock read") {
		t.Error("expected title 'Clock read'")
	}
}

// TestSummaryPrompt_Empty tests summaryPrompt with no explanations.
func TestSummaryPrompt_Empty(t *testing.T) {
	got := summaryPrompt(nil)

	if !strings.Contains(got, "executive summary") {
		t.Error("expected 'executive summary' in prompt even with no explanations")
	}
}
