// Package main is the entry point for the rewind CLI.
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = success, 1 = verification or policy failure, 2 = error.
func run(args []string) int {
	fs := flag.NewFlagSet("rewind", flag.ContinueOnError)

	var versionFlag bool
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rewind <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  audit <export.json>       Summarize and filter an audit trail export\n")
		fmt.Fprintf(os.Stderr, "  show <export.json>        Browse an audit trail export interactively\n")
		fmt.Fprintf(os.Stderr, "  manifest <manifest.json>  Validate and summarize a replay manifest\n")
		fmt.Fprintf(os.Stderr, "  verify <manifest.json>... Verify manifests can drive a faithful replay\n")
		fmt.Fprintf(os.Stderr, "  watch <manifest.json>     Re-verify a manifest whenever it changes\n")
		fmt.Fprintf(os.Stderr, "  explain <export.json>     Explain blocked effects and replay mismatches using an LLM\n")
		fmt.Fprintf(os.Stderr, "  serve                     Start MCP server on stdio\n")
		fmt.Fprintf(os.Stderr, "  completion <shell>        Generate shell completions\n")
		fmt.Fprintf(os.Stderr, "  version                   Print version and exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		fmt.Printf("rewind %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fs.Usage()
		return 2
	}

	command := remaining[0]
	switch command {
	case "audit":
		return runAudit(remaining[1:])
	case "show":
		return runShow(remaining[1:])
	case "manifest":
		return runManifest(remaining[1:])
	case "verify":
		return runVerify(remaining[1:])
	case "watch":
		return runWatch(remaining[1:])
	case "explain":
		return runExplain(remaining[1:])
	case "serve":
		return runServe(remaining[1:])
	case "completion":
		return runCompletion(remaining[1:])
	case "version":
		fmt.Printf("rewind %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Usage: rewind <command> [flags]")
		return 2
	}
}
