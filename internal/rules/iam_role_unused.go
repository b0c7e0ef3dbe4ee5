package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	iamRoleUnusedRuleID = "IAM_ROLE_UNUSED"

	// iamRoleMaxIdleDays is the idle period after which a role is considered
	// abandoned. 180 days is long enough to survive quarterly batch jobs.
	iamRoleMaxIdleDays = 180.0
)

// IAMRoleUnusedRule flags roles that have not been assumed within the idle
// threshold. Roles that were never used are only flagged once they are older
// than the threshold, so freshly created roles get a grace period.
// AWS service-linked roles are skipped; they cannot be deleted by hand.
type IAMRoleUnusedRule struct{}

func (r IAMRoleUnusedRule) ID() string   { return iamRoleUnusedRuleID }
func (r IAMRoleUnusedRule) Name() string { return "Unused IAM Role" }

// Evaluate returns one MEDIUM finding per role idle for longer than the
// max_idle_days threshold.
func (r IAMRoleUnusedRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	snap := ctx.Snapshot.Identity

	var findings []models.Finding
	for _, role := range snap.Roles {
		if strings.Contains(role.ARN, ":role/aws-service-role/") {
			continue
		}
		maxIdle := policy.GetThreshold(iamRoleUnusedRuleID, "max_idle_days", iamRoleMaxIdleDays, ctx.Policy)

		lastActivity := role.CreatedAt
		if role.LastUsedAt != nil {
			lastActivity = *role.LastUsedAt
		}
		idleDays := snap.CollectedAt.Sub(lastActivity).Hours() / 24
		if idleDays <= maxIdle {
			continue
		}

		explanation := fmt.Sprintf("Role %q has not been assumed for %.0f days.", role.RoleName, idleDays)
		if role.LastUsedAt == nil {
			explanation = fmt.Sprintf("Role %q has never been assumed since its creation %.0f days ago.", role.RoleName, idleDays)
		}

		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", iamRoleUnusedRuleID, role.RoleName),
			RuleID:         iamRoleUnusedRuleID,
			ResourceID:     role.RoleName,
			ResourceType:   models.ResourceIAMRole,
			Region:         "global",
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityMedium,
			Explanation:    explanation,
			Recommendation: "Delete the role or document why it must be kept.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"role_arn":   role.ARN,
				"idle_days":  int(idleDays),
				"never_used": role.LastUsedAt == nil,
			},
		})
	}
	return findings
}
