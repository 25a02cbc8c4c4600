package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rewind-hq/rewind/assist"
	core "github.com/rewind-hq/rewind/core"
	"github.com/rewind-hq/rewind/core/audit"
)

// runExplain loads an audit export and generates LLM-powered explanations of
// blocked and warned effects.
func runExplain(args []string) int {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)

	var (
		model     string
		baseURL   string
		batchSize int
		output    string
		all       bool
	)

	fs.StringVar(&model, "model", "", "LLM model name (default: gpt-4o)")
	fs.StringVar(&baseURL, "base-url", "", "custom OpenAI-compatible API base URL")
	fs.IntVar(&batchSize, "batch-size", 10, "entries per LLM request")
	fs.StringVar(&output, "output", "", "output file path (default: explanations.json)")
	fs.BoolVar(&all, "all", false, "explain all entries, not just blocked and warned ones")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rewind explain <export.json> [flags]")
		return 2
	}

	cfg, err := core.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	// Flags override config; config overrides built-in defaults.
	if model == "" {
		model = cfg.Explain.Model
	}
	if model == "" {
		model = "gpt-4o"
	}
	if baseURL == "" {
		baseURL = cfg.Explain.BaseURL
	}
	if output == "" {
		output = cfg.Explain.Output
	}
	if output == "" {
		output = "explanations.json"
	}

	keyEnv := cfg.Explain.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" && baseURL == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required (or set --base-url for a local endpoint)\n", keyEnv)
		return 2
	}

	export, err := audit.LoadExport(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	fmt.Printf("[explain] loaded %d entries from %s\n", len(export.Entries), fs.Arg(0))

	// Build provider.
	providerOpts := []assist.OpenAIOption{
		assist.WithModel(model),
		assist.WithTimeout(cfg.ExplainTimeout(2 * time.Minute)),
	}
	if apiKey != "" {
		providerOpts = append(providerOpts, assist.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		providerOpts = append(providerOpts, assist.WithBaseURL(baseURL))
	}
	provider := assist.NewOpenAIProvider(providerOpts...)

	// Build explainer.
	var explainerOpts []assist.Option
	if batchSize > 0 {
		explainerOpts = append(explainerOpts, assist.WithBatchSize(batchSize))
	}
	if all {
		explainerOpts = append(explainerOpts, assist.WithAllOutcomes())
	}
	explainer := assist.NewExplainer(provider, explainerOpts...)

	// Generate explanations.
	fmt.Println("[explain] generating explanations...")
	report, err := explainer.Explain(context.Background(), export)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: explain failed: %v\n", err)
		return 2
	}

	// Write report.
	if err := report.WriteFile(output); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", output, err)
		return 2
	}

	fmt.Printf("[explain] wrote %s (%d explanations)\n", output, len(report.Explanations))
	if report.Summary != "" {
		fmt.Printf("[summary] %s\n", report.Summary)
	}
	fmt.Println("[done]")
	return 0
}
