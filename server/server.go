// Package server implements the MCP server for agent-safe access to replay
// manifests and audit trail exports.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	core "github.com/rewind-hq/rewind/core"
	"github.com/rewind-hq/rewind/core/audit"
	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
	"github.com/rewind-hq/rewind/core/manifest"
)

const (
	// maxOutputBytes is the maximum response size before truncation (1 MB).
	maxOutputBytes = 1 << 20
)

// Server is the rewind MCP server.
type Server struct {
	version      string
	allowedPaths []string

	mu           sync.RWMutex
	manifestDoc  *manifest.Manifest
	manifestPath string
	export       *audit.Export
	exportPath   string
}

// New creates a new MCP server. If allowedPaths is empty, any path is allowed.
func New(version string, allowedPaths []string) *Server {
	// Resolve allowed paths to absolute for consistent comparison.
	resolved := make([]string, 0, len(allowedPaths))
	for _, p := range allowedPaths {
		abs, err := filepath.Abs(p)
		if err == nil {
			resolved = append(resolved, abs)
		}
	}
	return &Server{
		version:      version,
		allowedPaths: resolved,
	}
}

// Serve starts the MCP server on stdio and blocks until the client disconnects.
func (s *Server) Serve() error {
	srv := mcpserver.NewMCPServer(
		"rewind",
		s.version,
		mcpserver.WithRecovery(),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
	)

	s.registerTools(srv)
	s.registerResources(srv)

	return mcpserver.ServeStdio(srv)
}

func (s *Server) registerTools(srv *mcpserver.MCPServer) {
	// verify_manifest tool — checks a manifest can drive a faithful replay.
	srv.AddTool(
		mcp.NewTool("verify_manifest",
			mcp.WithDescription("Verify that a replay manifest is valid and can drive a faithful deterministic replay"),
			mcp.WithString("path",
				mcp.Description("Path to the manifest JSON file"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleVerifyManifest,
	)

	// inspect_manifest tool — summarizes a manifest's recorded determinism state.
	srv.AddTool(
		mcp.NewTool("inspect_manifest",
			mcp.WithDescription("Summarize a replay manifest: RNG seed, fixed time, UUID count, and recorded effects by type"),
			mcp.WithString("path",
				mcp.Description("Path to the manifest JSON file"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleInspectManifest,
	)

	// audit_summary tool — aggregates an audit trail export.
	srv.AddTool(
		mcp.NewTool("audit_summary",
			mcp.WithDescription("Summarize an audit trail export: entry counts by outcome and by effect source"),
			mcp.WithString("path",
				mcp.Description("Path to the audit export JSON file"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleAuditSummary,
	)

	// audit_entries tool — returns filtered entries from the last loaded export.
	srv.AddTool(
		mcp.NewTool("audit_entries",
			mcp.WithDescription("Get audit entries from the last loaded export, optionally filtered"),
			mcp.WithString("outcome",
				mcp.Description("Filter by outcome"),
				mcp.Enum("allowed", "blocked", "warned", "mocked"),
			),
			mcp.WithString("source",
				mcp.Description("Filter by effect source"),
				mcp.Enum("time", "random", "uuid", "network", "database", "filesystem", "compute", "other"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Return only the most recent N matching entries"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleAuditEntries,
	)
}

func (s *Server) registerResources(srv *mcpserver.MCPServer) {
	srv.AddResource(
		mcp.NewResource("rewind://audit", "Audit Trail Export",
			mcp.WithResourceDescription("The last loaded audit trail export in rewind JSON format"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceAudit,
	)

	srv.AddResource(
		mcp.NewResource("rewind://manifest", "Replay Manifest",
			mcp.WithResourceDescription("The last loaded replay manifest in rewind JSON format"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceManifest,
	)
}

// isPathAllowed checks if the given path is under one of the allowed workspace roots.
func (s *Server) isPathAllowed(path string) error {
	if len(s.allowedPaths) == 0 {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}

	for _, allowed := range s.allowedPaths {
		// Use filepath.Rel to check containment properly.
		rel, err := filepath.Rel(allowed, abs)
		if err != nil {
			continue
		}
		// If the relative path doesn't start with "..", it's under the allowed root.
		if !strings.HasPrefix(rel, "..") {
			return nil
		}
	}

	return fmt.Errorf("path %q is outside allowed workspaces", path)
}

// loadManifest loads and caches the manifest at path.
func (s *Server) loadManifest(path string) (*manifest.Manifest, error) {
	if err := s.isPathAllowed(path); err != nil {
		return nil, err
	}

	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.manifestDoc = m
	s.manifestPath = path
	s.mu.Unlock()

	return m, nil
}

func (s *Server) handleVerifyManifest(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required argument: path"), nil
	}

	m, err := s.loadManifest(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading manifest: %v", err)), nil
	}

	result := core.Verify(m)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshalling result: %v", err)), nil
	}

	return mcp.NewToolResultText(truncate(string(data))), nil
}

// manifestSummary is the inspect_manifest tool output.
type manifestSummary struct {
	SchemaVersion string         `json:"schema_version"`
	RNGSeed       int64          `json:"rng_seed"`
	FixedTime     string         `json:"fixed_time,omitempty"`
	UUIDCount     int            `json:"uuid_count"`
	EffectCount   int            `json:"effect_count"`
	EffectsByType map[string]int `json:"effects_by_type,omitempty"`
}

func (s *Server) handleInspectManifest(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required argument: path"), nil
	}

	m, err := s.loadManifest(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading manifest: %v", err)), nil
	}

	summary := manifestSummary{
		SchemaVersion: m.SchemaVersion,
		RNGSeed:       m.RNGSeed,
		FixedTime:     m.FixedTime,
		UUIDCount:     len(m.UUIDs),
		EffectCount:   len(m.Effects),
	}
	if len(m.Effects) > 0 {
		summary.EffectsByType = map[string]int{}
		for _, rec := range m.Effects {
			summary.EffectsByType[string(rec.EffectType)]++
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshalling summary: %v", err)), nil
	}

	return mcp.NewToolResultText(truncate(string(data))), nil
}

func (s *Server) handleAuditSummary(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required argument: path"), nil
	}

	if err := s.isPathAllowed(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	export, err := audit.LoadExport(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading export: %v", err)), nil
	}

	s.mu.Lock()
	s.export = export
	s.exportPath = path
	s.mu.Unlock()

	data, err := json.MarshalIndent(export.Summarize(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshalling summary: %v", err)), nil
	}

	return mcp.NewToolResultText(truncate(string(data))), nil
}

func (s *Server) handleAuditEntries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	export := s.export
	s.mu.RUnlock()

	if export == nil {
		return mcp.NewToolResultError("no audit export loaded — run the audit_summary tool first"), nil
	}

	filter := audit.Filter{
		Outcome: enforce.Outcome(request.GetString("outcome", "")),
		Source:  effect.Source(request.GetString("source", "")),
		Limit:   request.GetInt("limit", 0),
	}

	entries := export.Filtered(filter)
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshalling entries: %v", err)), nil
	}

	return mcp.NewToolResultText(truncate(string(data))), nil
}

// Resource handlers.

func (s *Server) handleResourceAudit(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.RLock()
	export := s.export
	s.mu.RUnlock()

	if export == nil {
		return nil, fmt.Errorf("no audit export loaded")
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("generating audit JSON: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     truncate(string(data)),
		},
	}, nil
}

func (s *Server) handleResourceManifest(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.RLock()
	m := s.manifestDoc
	s.mu.RUnlock()

	if m == nil {
		return nil, fmt.Errorf("no manifest loaded")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("generating manifest JSON: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     truncate(string(data)),
		},
	}, nil
}

// truncate limits output to maxOutputBytes, appending a truncation notice if needed.
func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	return s[:maxOutputBytes] + "\n... [truncated: output exceeded 1MB limit]"
}
