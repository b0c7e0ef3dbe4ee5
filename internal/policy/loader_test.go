package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPolicy(t *testing.T) {
	path := writePolicyFile(t, `
version: 1
domains:
  cost:
    enabled: true
    min_severity: MEDIUM
rules:
  EC2_LOW_CPU:
    severity: HIGH
    params:
      max_cpu_percent: 20
  EBS_UNATTACHED:
    enabled: false
enforcement:
  cost:
    fail_on_severity: HIGH
`)

	cfg, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if d := cfg.Domains["cost"]; !d.Enabled || d.MinSeverity != "MEDIUM" {
		t.Errorf("cost domain = %+v", d)
	}
	if got := cfg.Rules["EC2_LOW_CPU"].Params["max_cpu_percent"]; got != 20 {
		t.Errorf("max_cpu_percent = %v, want 20", got)
	}
	rc := cfg.Rules["EBS_UNATTACHED"]
	if rc.Enabled == nil || *rc.Enabled {
		t.Error("EBS_UNATTACHED should be explicitly disabled")
	}
	if cfg.Enforcement["cost"].FailOnSeverity != "HIGH" {
		t.Errorf("fail_on_severity = %q", cfg.Enforcement["cost"].FailOnSeverity)
	}
}

func TestLoadPolicyInitialisesMaps(t *testing.T) {
	cfg, err := LoadPolicy(writePolicyFile(t, "version: 1\n"))
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if cfg.Domains == nil || cfg.Rules == nil || cfg.Enforcement == nil {
		t.Error("maps should be initialised for a minimal file")
	}
}

func TestLoadPolicyUnsupportedVersion(t *testing.T) {
	if _, err := LoadPolicy(writePolicyFile(t, "version: 2\n")); err == nil {
		t.Error("expected error for version 2")
	}
}

func TestLoadPolicyMissingFile(t *testing.T) {
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestLoadPolicyMalformedYAML(t *testing.T) {
	if _, err := LoadPolicy(writePolicyFile(t, "version: [1\n")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
