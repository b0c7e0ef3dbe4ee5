package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// IAMPolicyUnattachedRule flags customer-managed policies with zero
// attachments. Unattached policies grant nothing but accumulate as clutter
// and make permission reviews slower than they need to be.
type IAMPolicyUnattachedRule struct{}

func (r IAMPolicyUnattachedRule) ID() string   { return "IAM_POLICY_UNATTACHED" }
func (r IAMPolicyUnattachedRule) Name() string { return "Unattached IAM Policy" }

// Evaluate returns one LOW finding per customer-managed policy whose
// attachment count is zero.
func (r IAMPolicyUnattachedRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	var findings []models.Finding
	for _, p := range ctx.Snapshot.Identity.Policies {
		if p.AttachmentCount != 0 {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), p.PolicyName),
			RuleID:         r.ID(),
			ResourceID:     p.PolicyName,
			ResourceType:   models.ResourceIAMPolicy,
			Region:         "global",
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Policy %q is not attached to any user, group, or role.", p.PolicyName),
			Recommendation: "Delete the policy if it is no longer needed.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"policy_arn": p.ARN,
			},
		})
	}
	return findings
}
