package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	core "github.com/rewind-hq/rewind/core"
	"github.com/rewind-hq/rewind/core/manifest"
)

// verifyOutcome pairs a manifest path with its verification result.
type verifyOutcome struct {
	Path   string             `json:"path"`
	Result *core.VerifyResult `json:"result"`
}

// runVerify implements the "rewind verify" command. Multiple manifests are
// verified in parallel; each gets its own replay components, so the workers
// never share sequential state.
func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)

	var (
		jsonFlag    bool
		verboseFlag bool
	)
	fs.BoolVar(&jsonFlag, "json", false, "output as JSON")
	fs.BoolVar(&verboseFlag, "verbose", false, "show passing checks as well as failing ones")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rewind verify <manifest.json>... [flags]")
		return 2
	}
	paths := fs.Args()

	outcomes := make([]verifyOutcome, len(paths))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			m, err := manifest.Load(path)
			var result *core.VerifyResult
			if err != nil {
				result = &core.VerifyResult{
					Pass:    false,
					Checks:  []core.Check{{Name: "manifest-load", Pass: false, Detail: err.Error()}},
					Summary: "manifest could not be loaded",
				}
			} else {
				result = core.Verify(m)
			}
			mu.Lock()
			outcomes[i] = verifyOutcome{Path: path, Result: result}
			mu.Unlock()
			return nil
		})
	}
	// Workers report failures through their results, never through errors.
	_ = g.Wait()

	if jsonFlag {
		out, err := json.MarshalIndent(outcomes, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshalling results: %v\n", err)
			return 2
		}
		fmt.Println(string(out))
	} else {
		printVerifyOutcomes(outcomes, verboseFlag)
	}

	for _, o := range outcomes {
		if !o.Result.Pass {
			return 1
		}
	}
	return 0
}

func printVerifyOutcomes(outcomes []verifyOutcome, verbose bool) {
	for _, o := range outcomes {
		status := "PASS"
		if !o.Result.Pass {
			status = "FAIL"
		}
		fmt.Printf("%s  %s (%s)\n", status, o.Path, o.Result.Summary)

		for _, c := range o.Result.Checks {
			if c.Pass && !verbose {
				continue
			}
			mark := "ok"
			if !c.Pass {
				mark = "FAILED"
			}
			fmt.Printf("  [%s] %s", mark, c.Name)
			if c.Detail != "" {
				fmt.Printf(": %s", c.Detail)
			}
			fmt.Println()
		}
	}
}
