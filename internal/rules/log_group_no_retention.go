package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	logGroupNoRetentionRuleID = "LOG_GROUP_NO_RETENTION"

	// logGroupMaxRetentionDays flags groups whose retention, while set, is
	// long enough to behave like never-expire.
	logGroupMaxRetentionDays = 365.0

	// logGroupMinSizeBytes keeps tiny groups out of the report; a group
	// under 1 GiB costs cents regardless of retention.
	logGroupMinSizeBytes = 1 << 30
)

// LogGroupNoRetentionRule flags log groups that keep data forever, or for
// longer than the retention ceiling, once they have accumulated enough data
// to matter.
type LogGroupNoRetentionRule struct{}

func (r LogGroupNoRetentionRule) ID() string   { return logGroupNoRetentionRuleID }
func (r LogGroupNoRetentionRule) Name() string { return "Log Group Retention Unbounded" }

// Evaluate returns one LOW finding per log group above min_size_bytes whose
// retention is unset or exceeds max_retention_days.
func (r LogGroupNoRetentionRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Spend == nil {
		return nil
	}
	var findings []models.Finding
	for _, lg := range ctx.Snapshot.Spend.LogGroups {
		minSize := policy.GetThreshold(logGroupNoRetentionRuleID, "min_size_bytes", logGroupMinSizeBytes, ctx.Policy)
		if float64(lg.StoredBytes) < minSize {
			continue
		}
		maxRetention := policy.GetThreshold(logGroupNoRetentionRuleID, "max_retention_days", logGroupMaxRetentionDays, ctx.Policy)

		explanation := ""
		switch {
		case lg.RetentionDays == nil:
			explanation = fmt.Sprintf("Log group %q retains %.1f GB indefinitely.", lg.Name, float64(lg.StoredBytes)/(1<<30))
		case float64(*lg.RetentionDays) > maxRetention:
			explanation = fmt.Sprintf("Log group %q retains %.1f GB for %d days.", lg.Name, float64(lg.StoredBytes)/(1<<30), *lg.RetentionDays)
		default:
			continue
		}

		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", logGroupNoRetentionRuleID, lg.Name),
			RuleID:         logGroupNoRetentionRuleID,
			ResourceID:     lg.Name,
			ResourceType:   models.ResourceLogGroup,
			Region:         lg.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    explanation,
			Recommendation: "Set a retention period appropriate to the log group's audit requirements.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"stored_bytes":    lg.StoredBytes,
				"retention_unset": lg.RetentionDays == nil,
			},
		})
	}
	return findings
}
