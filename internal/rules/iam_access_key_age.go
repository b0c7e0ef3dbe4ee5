package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	iamAccessKeyAgeRuleID = "IAM_ACCESS_KEY_AGE"

	// iamAccessKeyMaxAgeDays is the age beyond which an active access key is
	// flagged for rotation. 90 days matches the most common compliance
	// baselines (CIS, PCI DSS).
	iamAccessKeyMaxAgeDays = 90.0
)

// IAMAccessKeyAgeRule flags active IAM access keys older than the rotation
// threshold. Inactive keys are skipped: they cannot authenticate and should
// be deleted rather than rotated, which is a cleanup concern, not a
// credential-exposure one.
type IAMAccessKeyAgeRule struct{}

func (r IAMAccessKeyAgeRule) ID() string   { return iamAccessKeyAgeRuleID }
func (r IAMAccessKeyAgeRule) Name() string { return "Stale IAM Access Key" }

// Evaluate returns one HIGH finding per active access key whose age exceeds
// the max_age_days threshold.
func (r IAMAccessKeyAgeRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	snap := ctx.Snapshot.Identity

	var findings []models.Finding
	for _, key := range snap.AccessKeys {
		if key.Status != "Active" {
			continue
		}
		maxAge := policy.GetThreshold(iamAccessKeyAgeRuleID, "max_age_days", iamAccessKeyMaxAgeDays, ctx.Policy)
		ageDays := snap.CollectedAt.Sub(key.CreatedAt).Hours() / 24
		if ageDays <= maxAge {
			continue
		}

		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", iamAccessKeyAgeRuleID, key.KeyID),
			RuleID:         iamAccessKeyAgeRuleID,
			ResourceID:     key.KeyID,
			ResourceType:   models.ResourceIAMAccessKey,
			Region:         "global",
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityHigh,
			Explanation:    fmt.Sprintf("Access key for user %q is %.0f days old.", key.UserName, ageDays),
			Recommendation: "Rotate the access key and update consumers with the new credentials.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"user_name": key.UserName,
				"age_days":  int(ageDays),
			},
		})
	}
	return findings
}
