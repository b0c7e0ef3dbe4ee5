package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// S3DefaultEncryptionMissingRule flags buckets without a default server-side
// encryption configuration. Objects uploaded without an explicit encryption
// header land unencrypted in such buckets.
type S3DefaultEncryptionMissingRule struct{}

func (r S3DefaultEncryptionMissingRule) ID() string   { return "S3_DEFAULT_ENCRYPTION_MISSING" }
func (r S3DefaultEncryptionMissingRule) Name() string { return "S3 Default Encryption Missing" }

// Evaluate returns one HIGH finding per bucket without default encryption.
func (r S3DefaultEncryptionMissingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Storage == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Snapshot.Storage.Buckets {
		if b.DefaultEncryption {
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
			Explanation:    fmt.Sprintf("Bucket %q has no default server-side encryption.", b.Name),
			Recommendation: "Configure default SSE-S3 or SSE-KMS encryption on the bucket.",
			DetectedAt:     time.Now().UTC(),
		})
	}
	return findings
}
