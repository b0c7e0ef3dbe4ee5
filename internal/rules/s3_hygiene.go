package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// S3LifecycleMissingRule flags buckets with no lifecycle configuration.
// Without lifecycle rules, incomplete multipart uploads, old versions, and
// expired objects accumulate storage cost indefinitely.
type S3LifecycleMissingRule struct{}

func (r S3LifecycleMissingRule) ID() string   { return "S3_LIFECYCLE_MISSING" }
func (r S3LifecycleMissingRule) Name() string { return "S3 Lifecycle Missing" }

// Evaluate returns one LOW finding per bucket without lifecycle rules.
func (r S3LifecycleMissingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Storage == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Snapshot.Storage.Buckets {
		if b.HasLifecycle {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), b.Name),
			RuleID:         r.ID(),
			ResourceID:     b.Name,
			ResourceType:   models.ResourceS3Bucket,
			Region:         b.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Bucket %q has no lifecycle configuration.", b.Name),
			Recommendation: "Add lifecycle rules to expire stale data and abort incomplete uploads.",
			DetectedAt:     time.Now().UTC(),
		})
	}
	return findings
}

// S3LoggingDisabledRule flags buckets without server access logging. Access
// logs are the only record of object-level reads when CloudTrail data events
// are not enabled.
type S3LoggingDisabledRule struct{}

func (r S3LoggingDisabledRule) ID() string   { return "S3_LOGGING_DISABLED" }
func (r S3LoggingDisabledRule) Name() string { return "S3 Access Logging Disabled" }

// Evaluate returns one LOW finding per bucket without access logging.
func (r S3LoggingDisabledRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Storage == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Snapshot.Storage.Buckets {
		if b.LoggingEnabled {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), b.Name),
			RuleID:         r.ID(),
			ResourceID:     b.Name,
			ResourceType:   models.ResourceS3Bucket,
			Region:         b.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Bucket %q does not log server access requests.", b.Name),
			Recommendation: "Enable server access logging to a dedicated logging bucket.",
			DetectedAt:     time.Now().UTC(),
		})
	}
	return findings
}
