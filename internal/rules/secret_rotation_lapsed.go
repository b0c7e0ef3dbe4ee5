package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	secretRotationLapsedRuleID = "SECRET_ROTATION_LAPSED"

	// secretRotationMaxDays is the longest acceptable interval between
	// secret rotations, whether automatic or manual.
	secretRotationMaxDays = 180.0
)

// SecretRotationLapsedRule flags secrets with automatic rotation disabled,
// and secrets whose last rotation is older than the rotation threshold. A
// secret that has rotation enabled but has never rotated counts from its
// creation date.
type SecretRotationLapsedRule struct{}

func (r SecretRotationLapsedRule) ID() string   { return secretRotationLapsedRuleID }
func (r SecretRotationLapsedRule) Name() string { return "Secret Rotation Lapsed" }

// Evaluate returns one MEDIUM finding per secret that either has rotation
// disabled, or whose time since last rotation (or creation, if never
// rotated) exceeds rotation_max_days.
func (r SecretRotationLapsedRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	snap := ctx.Snapshot.Identity

	var findings []models.Finding
	for _, s := range snap.Secrets {
		maxDays := policy.GetThreshold(secretRotationLapsedRuleID, "rotation_max_days", secretRotationMaxDays, ctx.Policy)

		lastRotated := s.CreatedAt
		if s.LastRotatedAt != nil {
			lastRotated = *s.LastRotatedAt
		}
		sinceDays := snap.CollectedAt.Sub(lastRotated).Hours() / 24

		var explanation string
		switch {
		case !s.RotationEnabled:
			explanation = fmt.Sprintf("Secret %q has automatic rotation disabled.", s.Name)
		case sinceDays <= maxDays:
			continue
		case s.LastRotatedAt == nil:
			explanation = fmt.Sprintf("Secret %q has never been rotated in %.0f days.", s.Name, sinceDays)
		default:
			explanation = fmt.Sprintf("Secret %q was last rotated %.0f days ago.", s.Name, sinceDays)
		}

		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", secretRotationLapsedRuleID, s.Name),
			RuleID:         secretRotationLapsedRuleID,
			ResourceID:     s.Name,
			ResourceType:   models.ResourceSecret,
			Region:         s.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityMedium,
			Explanation:    explanation,
			Recommendation: "Enable automatic rotation or rotate the secret manually.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"secret_arn":       s.ARN,
				"rotation_enabled": s.RotationEnabled,
				"days_since":       int(sinceDays),
			},
		})
	}
	return findings
}
