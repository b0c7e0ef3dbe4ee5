package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	s3StaleMultipartRuleID = "S3_STALE_MULTIPART"

	// s3StaleMultipartMaxAgeDays is how long an in-progress multipart upload
	// may linger before it is considered abandoned. Legitimate uploads
	// finish within hours; a week covers even slow bulk transfers.
	s3StaleMultipartMaxAgeDays = 7.0
)

// S3StaleMultipartRule flags buckets holding multipart uploads initiated
// longer ago than the age threshold. Abandoned parts are invisible in the
// S3 console but are billed as regular storage until aborted.
type S3StaleMultipartRule struct{}

func (r S3StaleMultipartRule) ID() string   { return s3StaleMultipartRuleID }
func (r S3StaleMultipartRule) Name() string { return "Stale Multipart Uploads" }

// Evaluate returns one LOW finding per bucket with at least one multipart
// upload older than max_age_days, carrying the stale count in metadata.
func (r S3StaleMultipartRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Storage == nil {
		return nil
	}
	snap := ctx.Snapshot.Storage

	var findings []models.Finding
	for _, b := range snap.Buckets {
		maxAge := policy.GetThreshold(s3StaleMultipartRuleID, "max_age_days", s3StaleMultipartMaxAgeDays, ctx.Policy)

		var stale int
		var oldestDays float64
		for _, up := range b.MultipartUploads {
			ageDays := snap.CollectedAt.Sub(up.InitiatedAt).Hours() / 24
			if ageDays <= maxAge {
				continue
			}
			stale++
			if ageDays > oldestDays {
				oldestDays = ageDays
			}
		}
		if stale == 0 {
			continue
		}

		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", s3StaleMultipartRuleID, b.Name),
			RuleID:         s3StaleMultipartRuleID,
			ResourceID:     b.Name,
			ResourceType:   models.ResourceS3Bucket,
			Region:         b.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Bucket %q has %d abandoned multipart uploads, the oldest %.0f days old.", b.Name, stale, oldestDays),
			Recommendation: "Abort the stale uploads and add a lifecycle rule to abort future ones automatically.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"stale_uploads": stale,
				"oldest_days":   int(oldestDays),
			},
		})
	}
	return findings
}
