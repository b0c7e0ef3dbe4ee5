package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// S3PublicAccessBlockRule flags buckets that do not have all four public
// access block settings enabled. A bucket missing any one of the four can
// still be exposed through an ACL or bucket policy, so partial coverage is
// treated the same as none.
type S3PublicAccessBlockRule struct{}

func (r S3PublicAccessBlockRule) ID() string   { return "S3_PUBLIC_ACCESS_BLOCK" }
func (r S3PublicAccessBlockRule) Name() string { return "S3 Public Access Block Incomplete" }

// Evaluate returns one HIGH finding per bucket without a full public access
// block configuration.
func (r S3PublicAccessBlockRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Storage == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Snapshot.Storage.Buckets {
		if b.PublicAccessBlocked {
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
			Severity:       models.SeverityHigh,
			Explanation:    fmt.Sprintf("Bucket %q does not block all forms of public access.", b.Name),
			Recommendation: "Enable all four public access block settings on the bucket.",
			DetectedAt:     time.Now().UTC(),
		})
	}
	return findings
}
