package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	core "github.com/rewind-hq/rewind/core"
	"github.com/rewind-hq/rewind/core/manifest"
)

// runWatch implements the "rewind watch" command: re-verify a manifest
// whenever the file changes on disk.
func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var (
		debounce  time.Duration
		maxPerMin int
		jsonFlag  bool
	)
	fs.DurationVar(&debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")
	fs.IntVar(&maxPerMin, "max-per-min", 30, "cap on re-verifications per minute")
	fs.BoolVar(&jsonFlag, "json", false, "output as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rewind watch <manifest.json> [flags]")
		return 2
	}
	target := fs.Arg(0)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating watcher: %v\n", err)
		return 2
	}
	defer watcher.Close()

	// Watch the parent directory: editors and atomic saves replace the
	// file, which drops a watch registered on the file itself.
	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "error: watching %s: %v\n", dir, err)
		return 2
	}

	// Signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// A token bucket keeps a rapidly rewritten manifest from re-verifying
	// in a tight loop.
	limiter := rate.NewLimiter(rate.Limit(float64(maxPerMin)/60.0), maxPerMin)

	// Initial verification.
	fmt.Printf("watch: verifying %s (debounce: %s)\n", target, debounce)
	printWatchVerify(target, jsonFlag)

	// Debounced event loop.
	var mu sync.Mutex
	var timer *time.Timer

	resetTimer := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			if !limiter.Allow() {
				fmt.Fprintln(os.Stderr, "watch: rate limit reached, skipping re-verification")
				return
			}
			fmt.Printf("watch: re-verifying %s\n", target)
			printWatchVerify(target, jsonFlag)
		})
	}

	absTarget, _ := filepath.Abs(target)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			absEvent, _ := filepath.Abs(event.Name)
			if absEvent != absTarget {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				resetTimer()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-sigCh:
			fmt.Println("\nwatch: stopped")
			return 0
		}
	}
}

func printWatchVerify(target string, jsonOutput bool) {
	m, err := manifest.Load(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	result := core.Verify(m)
	if jsonOutput {
		out, err := json.MarshalIndent(verifyOutcome{Path: target, Result: result}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshalling result: %v\n", err)
			return
		}
		fmt.Println(string(out))
		return
	}

	status := "PASS"
	if !result.Pass {
		status = "FAIL"
	}
	fmt.Printf("[verify] %s (%s)\n", status, result.Summary)
	for _, c := range result.Checks {
		if !c.Pass {
			fmt.Printf("  FAILED %s: %s\n", c.Name, c.Detail)
		}
	}
}
