package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	secretStaleRuleID = "SECRET_STALE"

	// secretStaleDays is how long a secret may go unread before it is
	// considered abandoned.
	secretStaleDays = 90.0
)

// SecretStaleRule flags Secrets Manager secrets that no caller has retrieved
// within the staleness window. Secrets that were never retrieved fall back
// to their creation date, so a newly created secret is not flagged until the
// window has elapsed.
type SecretStaleRule struct{}

func (r SecretStaleRule) ID() string   { return secretStaleRuleID }
func (r SecretStaleRule) Name() string { return "Unused Secret" }

// Evaluate returns one MEDIUM finding per secret not accessed within the
// stale_days threshold.
func (r SecretStaleRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	snap := ctx.Snapshot.Identity

	var findings []models.Finding
	for _, s := range snap.Secrets {
		staleDays := policy.GetThreshold(secretStaleRuleID, "stale_days", secretStaleDays, ctx.Policy)

		lastActivity := s.CreatedAt
		if s.LastAccessedAt != nil {
			lastActivity = *s.LastAccessedAt
		}
		idleDays := snap.CollectedAt.Sub(lastActivity).Hours() / 24
		if idleDays <= staleDays {
			continue
		}

		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", secretStaleRuleID, s.Name),
			RuleID:         secretStaleRuleID,
			ResourceID:     s.Name,
			ResourceType:   models.ResourceSecret,
			Region:         s.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityMedium,
			Explanation:    fmt.Sprintf("Secret %q has not been retrieved for %.0f days.", s.Name, idleDays),
			Recommendation: "Delete the secret if the consuming workload has been retired.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"secret_arn":     s.ARN,
				"idle_days":      int(idleDays),
				"never_accessed": s.LastAccessedAt == nil,
			},
		})
	}
	return findings
}
