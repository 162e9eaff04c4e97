package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePolicyFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policies.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write policies: %v", err)
	}
	return path
}

func TestValidatePolicyFileAccepts(t *testing.T) {
	path := writePolicyFile(t, `policies:
  - uid: readers
    effect: allow
    subjects: ["Max", "<Ben|Henry>"]
    resources: ["book"]
    actions: ["read"]
  - uid: owners
    effect: deny
    subjects:
      - {type: eq, contents: {value: "root"}}
    resources: []
    actions: []
`)

	result := validatePolicyFile(context.Background(), path)
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if result.Policies != 2 {
		t.Errorf("Policies = %d, want 2", result.Policies)
	}
}

func TestValidatePolicyFileRejectsMissingUID(t *testing.T) {
	path := writePolicyFile(t, `policies:
  - effect: allow
    subjects: ["Max"]
    resources: ["book"]
    actions: ["read"]
`)

	result := validatePolicyFile(context.Background(), path)
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "uid") {
		t.Errorf("error should mention the empty uid, got %v", result.Errors)
	}
}

func TestValidatePolicyFileRejectsMissingFile(t *testing.T) {
	result := validatePolicyFile(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	if result.Valid {
		t.Fatal("expected invalid result for a missing file")
	}
}
