package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
)

var (
	outcomeColors = map[enforce.Outcome]lipgloss.Color{
		enforce.OutcomeBlocked: lipgloss.Color("#FF0000"),
		enforce.OutcomeWarned:  lipgloss.Color("#FF8C00"),
		enforce.OutcomeMocked:  lipgloss.Color("#7D56F4"),
		enforce.OutcomeAllowed: lipgloss.Color("#A3BE8C"),
	}

	auditTitleStyle  = lipgloss.NewStyle().Bold(true)
	auditSubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// outcomeBadge renders a fixed-width colored outcome label, or a plain one
// when styling is disabled.
func outcomeBadge(o enforce.Outcome, styled bool) string {
	label := fmt.Sprintf("%-7s", strings.ToUpper(string(o)))
	if !styled {
		return label
	}
	color, ok := outcomeColors[o]
	if !ok {
		color = lipgloss.Color("#808080")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(label)
}

// runAudit implements the "rewind audit" command.
func runAudit(args []string) int {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)

	var (
		outcomeFlag string
		sourceFlag  string
		limitFlag   int
		jsonFlag    bool
	)
	fs.StringVar(&outcomeFlag, "outcome", "", "filter by outcome: allowed,blocked,warned,mocked")
	fs.StringVar(&sourceFlag, "source", "", "filter by source: time,random,uuid,network,database,filesystem,compute,other")
	fs.IntVar(&limitFlag, "limit", 0, "show only the most recent N matching entries")
	fs.BoolVar(&jsonFlag, "json", false, "output as JSON")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rewind audit <export.json> [flags]")
		return 2
	}

	export, err := audit.LoadExport(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	filter := audit.Filter{
		Outcome: enforce.Outcome(outcomeFlag),
		Source:  effect.Source(sourceFlag),
		Limit:   limitFlag,
	}
	entries := export.Filtered(filter)

	if jsonFlag {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshalling entries: %v\n", err)
			return 2
		}
		fmt.Println(string(out))
		return 0
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	printAuditSummary(export, styled)

	if len(entries) == 0 {
		fmt.Println("no entries match the current filters")
		return 0
	}

	fmt.Println()
	for _, e := range entries {
		printAuditEntry(e, styled)
	}
	return 0
}

func printAuditSummary(export *audit.Export, styled bool) {
	s := export.Summarize()

	title := fmt.Sprintf("session %s — %d entries", s.SessionID, s.TotalEntries)
	if styled {
		title = auditTitleStyle.Render(title)
	}
	fmt.Println(title)

	if s.FirstDecision != nil && s.LastDecision != nil {
		span := fmt.Sprintf("  %s → %s", s.FirstDecision.Format("15:04:05.000"), s.LastDecision.Format("15:04:05.000"))
		if styled {
			span = auditSubtleStyle.Render(span)
		}
		fmt.Println(span)
	}

	var parts []string
	for _, o := range []enforce.Outcome{enforce.OutcomeBlocked, enforce.OutcomeWarned, enforce.OutcomeMocked, enforce.OutcomeAllowed} {
		if n := s.ByOutcome[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, o))
		}
	}
	if len(parts) > 0 {
		fmt.Printf("  %s\n", strings.Join(parts, ", "))
	}
}

func printAuditEntry(e audit.Entry, styled bool) {
	line := fmt.Sprintf(" %4d  %s  %-12s %-24s",
		e.Sequence,
		outcomeBadge(e.Decision.Outcome, styled),
		e.Decision.Source,
		e.Decision.EffectType)
	if len(e.Context) > 0 {
		var kv []string
		for k, v := range e.Context {
			kv = append(kv, fmt.Sprintf("%s=%s", k, v))
		}
		ctx := strings.Join(kv, " ")
		if styled {
			ctx = auditSubtleStyle.Render(ctx)
		}
		line += "  " + ctx
	}
	fmt.Println(line)
}
