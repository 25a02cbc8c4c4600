package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/rewind-hq/rewind/cli/tui"
	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
)

// runShow implements the "rewind show" command.
func runShow(args []string) int {
	// Extract positional args (paths) before parsing flags so that
	// "rewind show export.json --outcome blocked" works like
	// "rewind show --outcome blocked export.json".
	var flagArgs []string
	var positionalArgs []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flagArgs = append(flagArgs, args[i])
			// If this flag takes a value (not a boolean), consume the next arg too.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") &&
				!isBoolFlag(args[i]) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		} else {
			positionalArgs = append(positionalArgs, args[i])
		}
	}

	fs := flag.NewFlagSet("show", flag.ContinueOnError)

	var (
		outcomeFlag string
		sourceFlag  string
		limitFlag   int
		jsonOutput  bool
	)

	fs.StringVar(&outcomeFlag, "outcome", "", "filter by outcome: allowed,blocked,warned,mocked")
	fs.StringVar(&sourceFlag, "source", "", "filter by source: time,random,uuid,network,database,filesystem,compute,other")
	fs.IntVar(&limitFlag, "limit", 0, "show only the most recent N matching entries")
	fs.BoolVar(&jsonOutput, "json", false, "output JSON instead of TUI")

	if err := fs.Parse(flagArgs); err != nil {
		return 2
	}
	// Merge any remaining positional args from flag parse with pre-extracted ones.
	positionalArgs = append(positionalArgs, fs.Args()...)

	if len(positionalArgs) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rewind show <export.json> [flags]")
		return 2
	}

	export, err := audit.LoadExport(positionalArgs[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	filter := audit.Filter{
		Outcome: enforce.Outcome(outcomeFlag),
		Source:  effect.Source(sourceFlag),
		Limit:   limitFlag,
	}
	filtered := export.Filtered(filter)

	if len(filtered) == 0 {
		fmt.Println("[show] no entries to display")
		return 0
	}

	// Non-interactive: JSON output.
	if jsonOutput || !isTerminal() {
		return showJSON(filtered)
	}

	// Interactive: TUI.
	view := &audit.Export{SessionID: export.SessionID, Entries: filtered}
	m := tui.New(view)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: TUI failed: %v\n", err)
		return 2
	}
	return 0
}

func showJSON(entries []audit.Entry) int {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: marshalling JSON: %v\n", err)
		return 2
	}

	fmt.Println(string(data))
	return 0
}

// isBoolFlag returns true if the given flag name is a boolean flag
// (i.e., it does not consume a following value argument).
func isBoolFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	switch name {
	case "json":
		return true
	default:
		return false
	}
}

// isTerminal returns true if stdout is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
