package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempPolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPolicyValidateCmd(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeTempPolicy(t, `
version: 1
domains:
  cost:
    enabled: true
rules:
  EC2_LOW_CPU:
    params:
      max_cpu_percent: 20
enforcement:
  cost:
    fail_on_severity: HIGH
`)
		cmd := newPolicyValidateCmd()
		var buf strings.Builder
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{path})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if !strings.Contains(buf.String(), "valid") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("invalid file reports each error", func(t *testing.T) {
		path := writeTempPolicy(t, `
version: 1
domains:
  kubernetes:
    enabled: true
rules:
  NOT_A_RULE: {}
`)
		cmd := newPolicyValidateCmd()
		var buf strings.Builder
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{path})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected a validation error")
		}
		if !strings.Contains(err.Error(), "2 validation error") {
			t.Errorf("err = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "kubernetes") || !strings.Contains(out, "NOT_A_RULE") {
			t.Errorf("output missing error details:\n%s", out)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		cmd := newPolicyValidateCmd()
		cmd.SetOut(&strings.Builder{})
		cmd.SetErr(&strings.Builder{})
		cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.yaml")})
		if err := cmd.Execute(); err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})
}
