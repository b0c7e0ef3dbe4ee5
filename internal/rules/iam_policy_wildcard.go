package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// IAMPolicyWildcardRule flags customer-managed policies whose default version
// has a statement granting Action "*" together with Resource "*". Either
// wildcard alone is often legitimate (e.g. s3:* on a single bucket, or
// iam:GetUser on *), and so is the pair spread across separate statements;
// only the combination within one statement is treated as overly permissive.
type IAMPolicyWildcardRule struct{}

func (r IAMPolicyWildcardRule) ID() string   { return "IAM_POLICY_WILDCARD" }
func (r IAMPolicyWildcardRule) Name() string { return "IAM Policy With Full Wildcard" }

// Evaluate returns one HIGH finding per customer-managed policy containing a
// statement with both wildcard action and wildcard resource.
func (r IAMPolicyWildcardRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	var findings []models.Finding
	for _, p := range ctx.Snapshot.Identity.Policies {
		if !p.FullWildcard {
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
			Severity:       models.SeverityHigh,
			Explanation:    fmt.Sprintf("Policy %q allows all actions on all resources.", p.PolicyName),
			Recommendation: "Scope the policy to the specific actions and resources it needs.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"policy_arn":       p.ARN,
				"attachment_count": p.AttachmentCount,
			},
		})
	}
	return findings
}
