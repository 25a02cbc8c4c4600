package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunVerify_PassingManifest(t *testing.T) {
	path := writeTestManifest(t)

	code := runVerify([]string{path})
	if code != 0 {
		t.Fatalf("expected exit code 0 for passing manifest, got %d", code)
	}
}

func TestRunVerify_JSON(t *testing.T) {
	path := writeTestManifest(t)

	code := runVerify([]string{"-json", path})
	if code != 0 {
		t.Fatalf("expected exit code 0 for -json, got %d", code)
	}
}

func TestRunVerify_Verbose(t *testing.T) {
	path := writeTestManifest(t)

	code := runVerify([]string{"-verbose", path})
	if code != 0 {
		t.Fatalf("expected exit code 0 for -verbose, got %d", code)
	}
}

func TestRunVerify_MultipleManifests(t *testing.T) {
	a := writeTestManifest(t)
	b := writeTestManifest(t)

	code := runVerify([]string{a, b})
	if code != 0 {
		t.Fatalf("expected exit code 0 for two passing manifests, got %d", code)
	}
}

func TestRunVerify_MissingFile(t *testing.T) {
	code := runVerify([]string{"/nonexistent/manifest.json"})
	if code != 1 {
		t.Fatalf("expected exit code 1 for unloadable manifest, got %d", code)
	}
}

func TestRunVerify_MixedResults(t *testing.T) {
	good := writeTestManifest(t)

	code := runVerify([]string{good, "/nonexistent/manifest.json"})
	if code != 1 {
		t.Fatalf("expected exit code 1 when any manifest fails, got %d", code)
	}
}

func TestRunVerify_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	code := runVerify([]string{path})
	if code != 1 {
		t.Fatalf("expected exit code 1 for malformed manifest, got %d", code)
	}
}
