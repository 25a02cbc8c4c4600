package main

import (
	"testing"
)

func TestRunExplain_NoPath(t *testing.T) {
	code := runExplain([]string{})
	if code != 2 {
		t.Fatalf("expected exit code 2 for explain without path, got %d", code)
	}
}

func TestRunExplain_InvalidFlag(t *testing.T) {
	code := runExplain([]string{"--bogus"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for invalid flag, got %d", code)
	}
}

func TestRunExplain_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := writeTestExport(t)
	code := runExplain([]string{path})
	if code != 2 {
		t.Fatalf("expected exit code 2 without API key, got %d", code)
	}
}

func TestRunExplain_MissingExport(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	code := runExplain([]string{"/nonexistent/export.json"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for missing export, got %d", code)
	}
}
