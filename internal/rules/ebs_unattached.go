package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

const (
	ebsUnattachedRuleID = "EBS_UNATTACHED"

	// ebsGBMonthUSD is the gp3 storage price used to estimate what an
	// unattached volume costs per month.
	ebsGBMonthUSD = 0.08
)

// EBSUnattachedRule flags available volumes with no attachments. An
// unattached volume serves no workload but is billed for its full
// provisioned size every month.
type EBSUnattachedRule struct{}

func (r EBSUnattachedRule) ID() string   { return ebsUnattachedRuleID }
func (r EBSUnattachedRule) Name() string { return "Unattached EBS Volume" }

// Evaluate returns one MEDIUM finding per available, unattached volume with
// the estimated monthly storage cost as the saving.
func (r EBSUnattachedRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Spend == nil {
		return nil
	}
	var findings []models.Finding
	for _, vol := range ctx.Snapshot.Spend.Volumes {
		if vol.State != "available" || vol.Attached {
			continue
		}
		findings = append(findings, models.Finding{
			ID:                      fmt.Sprintf("%s-%s", ebsUnattachedRuleID, vol.VolumeID),
			RuleID:                  ebsUnattachedRuleID,
			ResourceID:              vol.VolumeID,
			ResourceType:            models.ResourceEBSVolume,
			Region:                  vol.Region,
			AccountID:               ctx.AccountID,
			Profile:                 ctx.Profile,
			Severity:                models.SeverityMedium,
			EstimatedMonthlySavings: float64(vol.SizeGB) * ebsGBMonthUSD,
			Explanation:             fmt.Sprintf("Volume of %d GB is not attached to any instance.", vol.SizeGB),
			Recommendation:          "Snapshot the volume if its data matters, then delete it.",
			DetectedAt:              time.Now().UTC(),
			Metadata: map[string]any{
				"volume_type": vol.VolumeType,
				"size_gb":     vol.SizeGB,
			},
		})
	}
	return findings
}
