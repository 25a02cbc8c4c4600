package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
	"github.com/rewind-hq/rewind/core/manifest"
	"github.com/rewind-hq/rewind/core/record"
)

func TestIsPathAllowed_NoRestrictions(t *testing.T) {
	s := New("0.1.0", nil)

	if err := s.isPathAllowed("/any/path"); err != nil {
		t.Fatalf("expected no error for unrestricted server, got: %v", err)
	}
}

func TestIsPathAllowed_AllowedPath(t *testing.T) {
	dir := t.TempDir()
	s := New("0.1.0", []string{dir})

	sub := filepath.Join(dir, "subdir")
	if err := s.isPathAllowed(sub); err != nil {
		t.Fatalf("expected path under allowed root to be allowed, got: %v", err)
	}
}

func TestIsPathAllowed_DisallowedPath(t *testing.T) {
	s := New("0.1.0", []string{"/allowed/workspace"})

	if err := s.isPathAllowed("/other/path"); err == nil {
		t.Fatal("expected error for path outside allowed workspace")
	}
}

func TestIsPathAllowed_ExactRoot(t *testing.T) {
	dir := t.TempDir()
	s := New("0.1.0", []string{dir})

	if err := s.isPathAllowed(dir); err != nil {
		t.Fatalf("expected exact root path to be allowed, got: %v", err)
	}
}

func TestIsPathAllowed_TraversalBlocked(t *testing.T) {
	dir := t.TempDir()
	s := New("0.1.0", []string{dir})

	traversal := filepath.Join(dir, "..", "escape")
	if err := s.isPathAllowed(traversal); err == nil {
		t.Fatal("expected path traversal to be blocked")
	}
}

func TestHandleVerifyManifest_Valid(t *testing.T) {
	path := writeTestManifest(t)

	s := New("0.1.0", nil)
	req := makeToolRequest(t, "verify_manifest", map[string]any{"path": path})

	result, err := s.handleVerifyManifest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, `"pass": true`) {
		t.Fatalf("expected passing verification, got: %s", text)
	}
}

func TestHandleVerifyManifest_MissingPath(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "verify_manifest", map[string]any{})

	result, err := s.handleVerifyManifest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for missing path argument")
	}
}

func TestHandleVerifyManifest_DisallowedPath(t *testing.T) {
	path := writeTestManifest(t)

	s := New("0.1.0", []string{"/allowed/only"})
	req := makeToolRequest(t, "verify_manifest", map[string]any{"path": path})

	result, err := s.handleVerifyManifest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for disallowed path")
	}

	text := toolResultText(result)
	if !strings.Contains(text, "outside allowed workspaces") {
		t.Fatalf("expected workspace error, got: %s", text)
	}
}

func TestHandleVerifyManifest_MissingFile(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "verify_manifest", map[string]any{
		"path": filepath.Join(t.TempDir(), "missing.json"),
	})

	result, err := s.handleVerifyManifest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for missing manifest file")
	}
}

func TestHandleInspectManifest(t *testing.T) {
	path := writeTestManifest(t)

	s := New("0.1.0", nil)
	req := makeToolRequest(t, "inspect_manifest", map[string]any{"path": path})

	result, err := s.handleInspectManifest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, `"rng_seed": 42`) {
		t.Fatalf("expected rng_seed in summary, got: %s", text)
	}
	if !strings.Contains(text, `"uuid_count": 1`) {
		t.Fatalf("expected uuid_count in summary, got: %s", text)
	}
	if !strings.Contains(text, `"network.http"`) {
		t.Fatalf("expected effect type counts, got: %s", text)
	}
}

func TestHandleAuditSummary(t *testing.T) {
	path := writeTestExport(t)

	s := New("0.1.0", nil)
	req := makeToolRequest(t, "audit_summary", map[string]any{"path": path})

	result, err := s.handleAuditSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, `"total_entries": 2`) {
		t.Fatalf("expected entry count in summary, got: %s", text)
	}
	if !strings.Contains(text, `"blocked": 1`) {
		t.Fatalf("expected blocked count in summary, got: %s", text)
	}
}

func TestHandleAuditEntries_BeforeLoad(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "audit_entries", map[string]any{})

	result, err := s.handleAuditEntries(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error before any export is loaded")
	}

	text := toolResultText(result)
	if !strings.Contains(text, "no audit export loaded") {
		t.Fatalf("expected no-export message, got: %s", text)
	}
}

func TestHandleAuditEntries_Filtered(t *testing.T) {
	s := loadTestExport(t)
	req := makeToolRequest(t, "audit_entries", map[string]any{"outcome": "blocked"})

	result, err := s.handleAuditEntries(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	var entries []audit.Entry
	if err := json.Unmarshal([]byte(toolResultText(result)), &entries); err != nil {
		t.Fatalf("unmarshalling entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 blocked entry, got %d", len(entries))
	}
	if entries[0].Decision.Outcome != enforce.OutcomeBlocked {
		t.Fatalf("expected blocked outcome, got %s", entries[0].Decision.Outcome)
	}
}

func TestResourceAudit_BeforeLoad(t *testing.T) {
	s := New("0.1.0", nil)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "rewind://audit"

	_, err := s.handleResourceAudit(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for resource before any export is loaded")
	}
}

func TestResourceAudit_AfterLoad(t *testing.T) {
	s := loadTestExport(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "rewind://audit"

	contents, err := s.handleResourceAudit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) == 0 {
		t.Fatal("expected non-empty resource contents")
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	if tc.URI != "rewind://audit" {
		t.Fatalf("expected URI rewind://audit, got %s", tc.URI)
	}
	if !strings.Contains(tc.Text, `"session_id"`) {
		t.Fatalf("expected export JSON, got: %s", tc.Text)
	}
}

func TestResourceManifest_BeforeLoad(t *testing.T) {
	s := New("0.1.0", nil)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "rewind://manifest"

	_, err := s.handleResourceManifest(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for resource before any manifest is loaded")
	}
}

func TestResourceManifest_AfterLoad(t *testing.T) {
	path := writeTestManifest(t)

	s := New("0.1.0", nil)
	if _, err := s.loadManifest(path); err != nil {
		t.Fatalf("loading manifest: %v", err)
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "rewind://manifest"

	contents, err := s.handleResourceManifest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) == 0 {
		t.Fatal("expected non-empty resource contents")
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	if !strings.Contains(tc.Text, `"schema_version"`) {
		t.Fatalf("expected manifest JSON, got: %s", tc.Text)
	}
}

func TestTruncate_Short(t *testing.T) {
	input := "short string"
	result := truncate(input)
	if result != input {
		t.Fatalf("expected unchanged string, got: %s", result)
	}
}

func TestTruncate_Long(t *testing.T) {
	input := strings.Repeat("x", maxOutputBytes+100)
	result := truncate(input)

	if len(result) <= maxOutputBytes {
		t.Fatal("expected truncated string to be longer than maxOutputBytes (includes notice)")
	}
	if !strings.Contains(result, "[truncated") {
		t.Fatal("expected truncation notice")
	}
	// The first maxOutputBytes bytes should be preserved.
	if result[:maxOutputBytes] != input[:maxOutputBytes] {
		t.Fatal("expected first maxOutputBytes bytes to match")
	}
}

// --- helpers ---

// writeTestManifest saves a small valid manifest to a temp dir and returns
// its path.
func writeTestManifest(t *testing.T) string {
	t.Helper()

	m := manifest.New()
	m.RNGSeed = 42
	m.UUIDs = []string{"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}
	m.Effects = []record.EffectRecord{
		{
			EffectType: "network.http",
			Intent:     record.Intent{"url": "https://example.com"},
			Result:     json.RawMessage(`{"status":200}`),
			Success:    true,
			Sequence:   1,
		},
	}

	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("saving manifest: %v", err)
	}
	return path
}

// writeTestExport writes a two-entry audit export to a temp dir and returns
// its path.
func writeTestExport(t *testing.T) string {
	t.Helper()

	export := audit.Export{
		SessionID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Entries: []audit.Entry{
			{
				Sequence: 1,
				Decision: enforce.Decision{
					EffectType: "time.now",
					Source:     effect.SourceTime,
					Mode:       enforce.ModeStrict,
					Outcome:    enforce.OutcomeBlocked,
					Sequence:   1,
				},
			},
			{
				Sequence: 2,
				Decision: enforce.Decision{
					EffectType: "compute.hash",
					Source:     effect.SourceCompute,
					Mode:       enforce.ModeStrict,
					Outcome:    enforce.OutcomeAllowed,
					Sequence:   2,
				},
			},
		},
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		t.Fatalf("marshalling export: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing export: %v", err)
	}
	return path
}

// loadTestExport writes a test export and loads it into a fresh server via
// the audit_summary tool.
func loadTestExport(t *testing.T) *Server {
	t.Helper()
	path := writeTestExport(t)

	s := New("0.1.0", nil)
	req := makeToolRequest(t, "audit_summary", map[string]any{"path": path})

	result, err := s.handleAuditSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("audit_summary failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("audit_summary returned error: %s", toolResultText(result))
	}
	return s
}

func makeToolRequest(t *testing.T, name string, args map[string]any) mcp.CallToolRequest {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshaling args: %v", err)
	}
	var raw any
	if err := json.Unmarshal(argsJSON, &raw); err != nil {
		t.Fatalf("unmarshaling args: %v", err)
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: raw,
		},
	}
}

func toolResultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
