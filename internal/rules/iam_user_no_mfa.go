package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// IAMUserNoMFARule flags IAM users that have console access (a login
// profile) but no MFA device registered. API-only users without a login
// profile are skipped because they cannot sign in to the console.
type IAMUserNoMFARule struct{}

func (r IAMUserNoMFARule) ID() string   { return "IAM_USER_NO_MFA" }
func (r IAMUserNoMFARule) Name() string { return "IAM Console User Without MFA" }

// Evaluate returns one MEDIUM finding per IAM user that has a console login
// profile but no MFA device.
func (r IAMUserNoMFARule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	var findings []models.Finding
	for _, u := range ctx.Snapshot.Identity.Users {
		if !u.HasLoginProfile {
			continue // API-only user; console MFA is irrelevant
		}
		if u.MFAEnabled {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), u.UserName),
			RuleID:         r.ID(),
			ResourceID:     u.UserName,
			ResourceType:   models.ResourceIAMUser,
			Region:         "global",
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityMedium,
			Explanation:    fmt.Sprintf("IAM user %q has console access but no MFA device registered.", u.UserName),
			Recommendation: "Enable MFA for all IAM users that have console access.",
			DetectedAt:     time.Now().UTC(),
		})
	}
	return findings
}
