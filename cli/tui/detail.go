package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rewind-hq/rewind/core/enforce"
)

// renderDetail renders the detail view for a single audit entry.
func renderDetail(m *Model) string {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return "No entry selected."
	}

	e := m.filtered[m.cursor]
	d := e.Decision

	var b strings.Builder

	// Header.
	badge := outcomeStyle(d.Outcome).Render(strings.ToUpper(string(d.Outcome)))
	b.WriteString(fmt.Sprintf(" %s · %s\n",
		effectTypeStyle.Render(string(d.EffectType)),
		badge))
	b.WriteString(headerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("   %s %s\n", subtleStyle.Render("sequence:"), fmt.Sprintf("#%d", e.Sequence)))
	b.WriteString(fmt.Sprintf("   %s %s\n", subtleStyle.Render("source:  "), sourceStyle.Render(string(d.Source))))
	b.WriteString(fmt.Sprintf("   %s %s\n", subtleStyle.Render("mode:    "), string(d.Mode)))
	if !d.Timestamp.IsZero() {
		b.WriteString(fmt.Sprintf("   %s %s\n", subtleStyle.Render("time:    "), d.Timestamp.Format(time.RFC3339Nano)))
	}
	b.WriteString("\n")

	// Context.
	if len(e.Context) > 0 {
		b.WriteString(" " + contextHeaderStyle.Render("Context") + "\n")
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("   %s: %s\n", subtleStyle.Render(k), e.Context[k]))
		}
		b.WriteString("\n")
	}

	// Remediation hint for blocked effects.
	if d.Outcome == enforce.OutcomeBlocked {
		b.WriteString(" " + contextHeaderStyle.Render("Remediation") + "\n")
		hint := fmt.Sprintf("This %s effect was blocked under %s mode. "+
			"Inject the value through the session's injectors, or record a "+
			"manifest and replay it in mocked mode.", d.Source, d.Mode)
		b.WriteString(wrapText(hint, m.width-4, "   "))
		b.WriteString("\n")
	}

	// Help.
	b.WriteString(helpStyle.Render(" esc back  n/p next/prev  q quit"))
	b.WriteString("\n")

	return b.String()
}

// wrapText wraps text at the given width with the given indent prefix.
func wrapText(text string, width int, indent string) string {
	if width <= 0 {
		width = 78
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(indent)
	lineLen := len(indent)

	for i, word := range words {
		if i > 0 && lineLen+1+len(word) > width {
			b.WriteString("\n" + indent)
			lineLen = len(indent)
		} else if i > 0 {
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	b.WriteString("\n")
	return b.String()
}
