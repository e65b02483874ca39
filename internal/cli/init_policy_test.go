package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/agenium/postgate/internal/policy"
)

func TestRunInitPolicy(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	if err := runInitPolicy(nil, nil); err != nil {
		t.Fatalf("runInitPolicy failed: %v", err)
	}

	path := filepath.Join(tmpDir, ".postgate", "policy.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("policy.yaml not created: %v", err)
	}
	if !strings.Contains(string(data), "rate_limits:") {
		t.Error("policy.yaml missing rate_limits section")
	}

	// The generated file must load back into a valid config.
	cfg := policy.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		t.Fatalf("generated policy.yaml does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("generated policy.yaml does not validate: %v", err)
	}
}

func TestRunInitPolicyNoOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	dir := filepath.Join(tmpDir, ".postgate")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	sentinel := "# sentinel content\n"
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(sentinel), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runInitPolicy(nil, nil); err == nil {
		t.Fatal("expected error when policy.yaml already exists")
	}

	data, _ := os.ReadFile(path)
	if string(data) != sentinel {
		t.Error("existing policy.yaml was overwritten")
	}
}
