package assist

import (
	"fmt"
	"strings"
	"time"

	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/enforce"
)

// systemPrompt returns the system message that instructs the LLM on how to
// analyze and explain audit trail entries from the Rewind enforcement engine.
func systemPrompt() string {
	return `You are an expert in deterministic execution analyzing audit entries from Rewind,
a deterministic effect replay and enforcement engine. Each entry records an attempted
side effect (reading the clock, drawing randomness, network or database access) and
the enforcement decision applied to it.
For each entry, provide a JSON array with objects containing these fields:
- "sequence": the entry sequence number (number)
- "effect_type": the effect type (string)
- "outcome": the enforcement outcome (string)
- "title": a concise title for the issue (string)
- "explanation": what this effect attempt means in plain language (string)
- "impact": how this effect breaks deterministic replay if left uncontrolled (string)
- "remediation": specific steps to route the effect through injectors or recorded manifests (string)
- "references": relevant URLs for further reading (array of strings, optional)

Respond ONLY with a valid JSON array. Do not include markdown fences or other text.
Be concise and actionable. Focus on making the code replayable.`
}

// formatEntries converts a batch of audit entries into structured text for
// the LLM.
func formatEntries(entries []audit.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "Sequence: %d\n", e.Sequence)
		fmt.Fprintf(&b, "Effect type: %s\n", e.Decision.EffectType)
		fmt.Fprintf(&b, "Source: %s\n", e.Decision.Source)
		fmt.Fprintf(&b, "Mode: %s\n", e.Decision.Mode)
		fmt.Fprintf(&b, "Outcome: %s\n", e.Decision.Outcome)
		if !e.Decision.Timestamp.IsZero() {
			fmt.Fprintf(&b, "Time: %s\n", e.Decision.Timestamp.Format(time.RFC3339Nano))
		}
		for k, v := range e.Context {
			fmt.Fprintf(&b, "Context %s: %s\n", k, v)
		}
	}
	return b.String()
}

// formatContext summarises the export for the LLM so it can provide
// contextually aware explanations.
func formatContext(export *audit.Export) string {
	s := export.Summarize()

	var b strings.Builder
	b.WriteString("Session context:\n")
	if s.SessionID != "" {
		fmt.Fprintf(&b, "Session ID: %s\n", s.SessionID)
	}
	fmt.Fprintf(&b, "Total entries: %d\n", s.TotalEntries)

	for _, o := range []enforce.Outcome{
		enforce.OutcomeBlocked,
		enforce.OutcomeWarned,
		enforce.OutcomeMocked,
		enforce.OutcomeAllowed,
	} {
		if c := s.ByOutcome[o]; c > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", o, c)
		}
	}

	if len(s.BySource) > 0 {
		b.WriteString("Effects by source:\n")
		for src, count := range s.BySource {
			fmt.Fprintf(&b, "  %s: %d\n", src, count)
		}
	}

	return b.String()
}

// summaryPrompt returns a user message asking the LLM to produce an executive
// summary of all explained entries.
func summaryPrompt(explanations []EntryExplanation) string {
	var b strings.Builder
	b.WriteString("Based on these enforcement decisions, provide a 2-3 sentence executive summary ")
	b.WriteString("of how replayable this execution is. Highlight the effects most likely to cause divergence.\n\n")
	for _, e := range explanations {
		fmt.Fprintf(&b, "- [%s %s] %s: %s\n", e.EffectType, e.Outcome, e.Title, e.Explanation)
	}
	b.WriteString("\nRespond with ONLY the summary text, no JSON.")
	return b.String()
}
