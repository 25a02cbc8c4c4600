package tui

import (
	"fmt"
	"strings"

	"github.com/rewind-hq/rewind/core/audit"
)

// renderList renders the audit entry list view.
func renderList(m *Model) string {
	var b strings.Builder

	// Header.
	title := titleStyle.Render(fmt.Sprintf(" Rewind — %d entries", len(m.filtered)))
	if len(m.export.Entries) != len(m.filtered) {
		title += subtleStyle.Render(fmt.Sprintf(" (of %d total)", len(m.export.Entries)))
	}
	if m.export.SessionID != "" {
		title += subtleStyle.Render("  session " + m.export.SessionID)
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	// Filter status.
	filterLine := subtleStyle.Render(" Outcome: ") + "[" + m.filter.activeOutcome() + "]" +
		subtleStyle.Render("  Source: ") + "[" + m.filter.activeSource() + "]"
	if m.filter.search != "" {
		filterLine += subtleStyle.Render("  Search: ") + "[" + m.filter.search + "]"
	}
	b.WriteString(filterLine)
	b.WriteString("\n\n")

	// Entry list.
	if len(m.filtered) == 0 {
		b.WriteString(subtleStyle.Render("  No entries match the current filters.\n"))
	} else {
		// Calculate visible window.
		visibleLines := m.height - 8 // Header + filter + help lines.
		if visibleLines < 1 {
			visibleLines = 1
		}
		start := m.cursor - visibleLines/2
		if start < 0 {
			start = 0
		}
		end := start + visibleLines
		if end > len(m.filtered) {
			end = len(m.filtered)
			start = end - visibleLines
			if start < 0 {
				start = 0
			}
		}

		for i := start; i < end; i++ {
			e := m.filtered[i]
			line := renderEntryLine(e, i == m.cursor)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	// Search input.
	if m.filter.searching {
		b.WriteString("\n")
		b.WriteString(" Search: " + m.filter.search + "█")
		b.WriteString("\n")
	}

	// Help.
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(" ↑↓ navigate  enter detail  / search  o outcome  s source  q quit"))
	b.WriteString("\n")

	return b.String()
}

// renderEntryLine renders a single audit entry line in the list.
func renderEntryLine(e audit.Entry, selected bool) string {
	badge := outcomeBadge(e.Decision.Outcome)
	seq := subtleStyle.Render(fmt.Sprintf("#%-5d", e.Sequence))
	source := sourceStyle.Render(fmt.Sprintf("%-10s", string(e.Decision.Source)))
	effectType := effectTypeStyle.Render(string(e.Decision.EffectType))

	line := fmt.Sprintf(" %s  %s  %s  %s", badge, seq, source, effectType)

	if selected {
		return selectedStyle.Render("▸") + line
	}
	return " " + line
}
