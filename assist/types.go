// Package assist provides optional LLM-based explanations of audit trail
// entries. It consumes an audit.Export and produces human-friendly
// explanations of why effects were blocked or warned, what the impact on
// determinism is, and how to make the code replayable.
//
// The package is strictly side-effect-free: it never affects enforcement
// decisions and is opt-in only.
package assist

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExplanationReport is the top-level output of the explain pipeline.
type ExplanationReport struct {
	SchemaVersion string             `json:"schema_version"`
	SessionID     string             `json:"session_id,omitempty"`
	Explanations  []EntryExplanation `json:"explanations"`
	Summary       string             `json:"summary"`
	Usage         UsageStats         `json:"usage"`
}

// EntryExplanation holds the LLM-generated explanation for a single audit
// trail entry.
type EntryExplanation struct {
	Sequence    uint64   `json:"sequence"`
	EffectType  string   `json:"effect_type"`
	Outcome     string   `json:"outcome"`
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Impact      string   `json:"impact"`
	Remediation string   `json:"remediation"`
	References  []string `json:"references,omitempty"`
}

// UsageStats tracks LLM token consumption across all provider calls.
type UsageStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	RequestCount     int `json:"request_count"`
}

// JSON returns the report as pretty-printed JSON bytes.
func (r *ExplanationReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteFile writes the report to the given file path.
func (r *ExplanationReport) WriteFile(path string) error {
	data, err := r.JSON()
	if err != nil {
		return fmt.Errorf("marshalling explanation report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
