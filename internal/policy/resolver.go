package policy

import (
	"strings"

	"github.com/opsaudit/opsaudit/internal/models"
)

// ApplyPolicy filters and rewrites findings according to cfg.
// It is a pure function: the input slice is not modified.
//
// Order of application:
//  1. Domain disabled → all findings dropped.
//  2. Rule disabled → that rule's findings dropped.
//  3. Rule severity override applied.
//  4. Domain min_severity floor applied (after overrides, so an override
//     can lift a finding above the floor).
func ApplyPolicy(findings []models.Finding, domain string, cfg *PolicyConfig) []models.Finding {
	if cfg == nil {
		return findings
	}

	var floor int
	if d, ok := cfg.Domains[domain]; ok {
		if !d.Enabled {
			return []models.Finding{}
		}
		if d.MinSeverity != "" {
			if r, ok := severityRank[models.Severity(strings.ToUpper(d.MinSeverity))]; ok {
				floor = r
			}
		}
	}

	var result []models.Finding
	for _, f := range findings {
		ruleCfg, hasRule := cfg.Rules[f.RuleID]

		if hasRule && ruleCfg.Enabled != nil && !*ruleCfg.Enabled {
			continue
		}
		if hasRule && ruleCfg.Severity != "" {
			f.Severity = models.Severity(strings.ToUpper(ruleCfg.Severity))
		}
		if floor > 0 {
			if r, ok := severityRank[f.Severity]; !ok || r < floor {
				continue
			}
		}
		result = append(result, f)
	}
	return result
}
