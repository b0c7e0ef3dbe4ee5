package policy

import (
	"strings"

	"github.com/opsaudit/opsaudit/internal/models"
)

// severityRank orders severities for floor and enforcement comparisons.
// CRITICAL (5) > HIGH (4) > MEDIUM (3) > LOW (2) > INFO (1).
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 5,
	models.SeverityHigh:     4,
	models.SeverityMedium:   3,
	models.SeverityLow:      2,
	models.SeverityInfo:     1,
}

// ShouldFail reports whether any finding has a severity at or above the
// configured fail_on_severity threshold for the given domain.
//
// It returns false when:
//   - cfg is nil (no policy loaded)
//   - no enforcement block is configured for domain
//   - fail_on_severity is empty or an unrecognised value
//   - findings is empty
func ShouldFail(domain string, findings []models.Finding, cfg *PolicyConfig) bool {
	if cfg == nil {
		return false
	}
	enfCfg, ok := cfg.Enforcement[domain]
	if !ok || enfCfg.FailOnSeverity == "" {
		return false
	}
	threshold, ok := severityRank[models.Severity(strings.ToUpper(enfCfg.FailOnSeverity))]
	if !ok {
		return false
	}
	for _, f := range findings {
		if r, ok := severityRank[f.Severity]; ok && r >= threshold {
			return true
		}
	}
	return false
}
