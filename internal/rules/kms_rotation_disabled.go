package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// KMSRotationDisabledRule flags enabled symmetric customer-managed KMS keys
// that do not have annual key rotation turned on. Asymmetric keys are
// skipped because AWS does not support automatic rotation for them, and
// disabled or pending-deletion keys are skipped because rotation state is
// moot for keys on their way out.
type KMSRotationDisabledRule struct{}

func (r KMSRotationDisabledRule) ID() string   { return "KMS_ROTATION_DISABLED" }
func (r KMSRotationDisabledRule) Name() string { return "KMS Key Rotation Disabled" }

// Evaluate returns one MEDIUM finding per enabled symmetric key without
// automatic rotation.
func (r KMSRotationDisabledRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Identity == nil {
		return nil
	}
	var findings []models.Finding
	for _, key := range ctx.Snapshot.Identity.KMSKeys {
		if key.State != "Enabled" {
			continue
		}
		if !key.Symmetric {
			continue // automatic rotation is symmetric-only
		}
		if key.RotationEnabled {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), key.KeyID),
			RuleID:         r.ID(),
			ResourceID:     key.KeyID,
			ResourceType:   models.ResourceKMSKey,
			Region:         key.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityMedium,
			Explanation:    "Customer-managed KMS key does not rotate automatically.",
			Recommendation: "Enable annual automatic rotation for the key.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"key_arn":     key.ARN,
				"description": key.Description,
			},
		})
	}
	return findings
}
