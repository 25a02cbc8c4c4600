package assist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/enforce"
)

const defaultBatchSize = 10

// Explainer orchestrates LLM-based explanation of audit trail entries. It
// selects the entries worth explaining, batches them, sends them to a
// Provider, and assembles an ExplanationReport.
type Explainer struct {
	provider   Provider
	batchSize  int
	allOutcome bool
}

// Option configures an Explainer.
type Option func(*Explainer)

// WithBatchSize sets how many entries are sent per LLM call (default 10).
func WithBatchSize(n int) Option {
	return func(e *Explainer) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithAllOutcomes includes allowed and mocked entries in the explanation, not
// just blocked and warned ones.
func WithAllOutcomes() Option {
	return func(e *Explainer) { e.allOutcome = true }
}

// NewExplainer creates an Explainer with the given provider and options.
func NewExplainer(provider Provider, opts ...Option) *Explainer {
	e := &Explainer{
		provider:  provider,
		batchSize: defaultBatchSize,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Explain analyses the audit export and returns an ExplanationReport with
// per-entry explanations and an executive summary. By default only blocked
// and warned entries are explained; use WithAllOutcomes to include the rest.
//
// If the provider returns an error for a batch, the explainer degrades
// gracefully: it returns the explanations gathered so far and records the
// error in the summary field.
func (e *Explainer) Explain(ctx context.Context, export *audit.Export) (*ExplanationReport, error) {
	report := &ExplanationReport{
		SchemaVersion: "1.0.0",
		SessionID:     export.SessionID,
	}

	entries := e.selectEntries(export)
	if len(entries) == 0 {
		report.Summary = "No entries to explain."
		return report, nil
	}

	sysMsgs := []Message{
		{Role: RoleSystem, Content: systemPrompt()},
		{Role: RoleUser, Content: formatContext(export)},
	}

	var providerErr error

	// Process entries in batches.
	for i := 0; i < len(entries); i += e.batchSize {
		end := i + e.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[i:end]

		messages := make([]Message, len(sysMsgs)+1)
		copy(messages, sysMsgs)
		messages[len(sysMsgs)] = Message{
			Role:    RoleUser,
			Content: "Explain these audit entries:\n\n" + formatEntries(batch),
		}

		resp, err := e.provider.Complete(ctx, messages)
		if err != nil {
			providerErr = err
			break
		}

		report.Usage.PromptTokens += resp.PromptTokens
		report.Usage.CompletionTokens += resp.CompletionTokens
		report.Usage.TotalTokens += resp.PromptTokens + resp.CompletionTokens
		report.Usage.RequestCount++

		explanations, err := parseExplanations(resp.Content)
		if err != nil {
			providerErr = fmt.Errorf("parsing LLM response: %w", err)
			break
		}

		report.Explanations = append(report.Explanations, explanations...)
	}

	// Generate summary.
	if providerErr != nil {
		report.Summary = fmt.Sprintf("Partial results: %d of %d entries explained. Error: %v",
			len(report.Explanations), len(entries), providerErr)
	} else if len(report.Explanations) > 0 {
		summary, err := e.generateSummary(ctx, report.Explanations)
		if err != nil {
			report.Summary = fmt.Sprintf("Generated explanations for %d entries. Summary generation failed: %v",
				len(report.Explanations), err)
		} else {
			report.Summary = summary
		}
	}

	return report, nil
}

// selectEntries picks the entries to explain. Blocked and warned entries are
// always included; the rest only with WithAllOutcomes.
func (e *Explainer) selectEntries(export *audit.Export) []audit.Entry {
	if e.allOutcome {
		return export.Entries
	}
	var out []audit.Entry
	for _, entry := range export.Entries {
		switch entry.Decision.Outcome {
		case enforce.OutcomeBlocked, enforce.OutcomeWarned:
			out = append(out, entry)
		}
	}
	return out
}

// generateSummary asks the provider for an executive summary of all
// explained entries.
func (e *Explainer) generateSummary(ctx context.Context, explanations []EntryExplanation) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: "You are an expert in deterministic execution summarising enforcement results."},
		{Role: RoleUser, Content: summaryPrompt(explanations)},
	}

	resp, err := e.provider.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// parseExplanations extracts EntryExplanation values from the LLM's JSON
// response.
func parseExplanations(raw string) ([]EntryExplanation, error) {
	var explanations []EntryExplanation
	if err := json.Unmarshal([]byte(raw), &explanations); err != nil {
		return nil, fmt.Errorf("invalid JSON from LLM: %w", err)
	}
	return explanations, nil
}
