package policy

import (
	"testing"

	"github.com/opsaudit/opsaudit/internal/models"
)

func TestShouldFail(t *testing.T) {
	findings := []models.Finding{
		{ID: "a", Severity: models.SeverityLow},
		{ID: "b", Severity: models.SeverityHigh},
	}

	withFailOn := func(sev string) *PolicyConfig {
		return &PolicyConfig{
			Version:     1,
			Enforcement: map[string]EnforcementConfig{"cost": {FailOnSeverity: sev}},
		}
	}

	t.Run("nil config never fails", func(t *testing.T) {
		if ShouldFail("cost", findings, nil) {
			t.Error("ShouldFail = true with nil config")
		}
	})

	t.Run("no enforcement block for domain", func(t *testing.T) {
		if ShouldFail("identity", findings, withFailOn("LOW")) {
			t.Error("ShouldFail = true without an enforcement block")
		}
	})

	t.Run("empty fail_on_severity", func(t *testing.T) {
		if ShouldFail("cost", findings, withFailOn("")) {
			t.Error("ShouldFail = true with empty fail_on_severity")
		}
	})

	t.Run("unknown fail_on_severity", func(t *testing.T) {
		if ShouldFail("cost", findings, withFailOn("SEVERE")) {
			t.Error("ShouldFail = true with unrecognised severity")
		}
	})

	t.Run("finding at threshold fails", func(t *testing.T) {
		if !ShouldFail("cost", findings, withFailOn("HIGH")) {
			t.Error("ShouldFail = false with a HIGH finding at a HIGH threshold")
		}
	})

	t.Run("finding above threshold fails", func(t *testing.T) {
		if !ShouldFail("cost", findings, withFailOn("medium")) {
			t.Error("ShouldFail = false with a HIGH finding above a MEDIUM threshold")
		}
	})

	t.Run("all findings below threshold", func(t *testing.T) {
		if ShouldFail("cost", findings, withFailOn("CRITICAL")) {
			t.Error("ShouldFail = true with no CRITICAL findings")
		}
	})

	t.Run("no findings", func(t *testing.T) {
		if ShouldFail("cost", nil, withFailOn("INFO")) {
			t.Error("ShouldFail = true with no findings")
		}
	})
}
