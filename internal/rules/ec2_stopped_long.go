package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	ec2StoppedLongRuleID = "EC2_STOPPED_LONG"

	// ec2MaxStoppedDays is how long an instance may stay stopped before its
	// attached EBS volumes count as waste.
	ec2MaxStoppedDays = 30.0

	// ec2StoppedLongSavingsUSD approximates the EBS storage cost a stopped
	// instance keeps accruing (a typical 50 GB gp3 root volume).
	ec2StoppedLongSavingsUSD = 5.0
)

// EC2StoppedLongRule flags instances stopped for longer than the threshold.
// The stop timestamp is parsed from the state transition reason; instances
// where it could not be determined are skipped.
type EC2StoppedLongRule struct{}

func (r EC2StoppedLongRule) ID() string   { return ec2StoppedLongRuleID }
func (r EC2StoppedLongRule) Name() string { return "Long-Stopped EC2 Instance" }

// Evaluate returns one LOW finding per instance stopped for more than
// max_stopped_days.
func (r EC2StoppedLongRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Spend == nil {
		return nil
	}
	snap := ctx.Snapshot.Spend

	var findings []models.Finding
	for _, inst := range snap.Instances {
		if inst.State != "stopped" {
			continue
		}
		if inst.StoppedAt == nil {
			continue // stop time unknown
		}
		maxStopped := policy.GetThreshold(ec2StoppedLongRuleID, "max_stopped_days", ec2MaxStoppedDays, ctx.Policy)
		stoppedDays := snap.CollectedAt.Sub(*inst.StoppedAt).Hours() / 24
		if stoppedDays <= maxStopped {
			continue
		}

		findings = append(findings, models.Finding{
			ID:                      fmt.Sprintf("%s-%s", ec2StoppedLongRuleID, inst.InstanceID),
			RuleID:                  ec2StoppedLongRuleID,
			ResourceID:              inst.InstanceID,
			ResourceType:            models.ResourceEC2Instance,
			Region:                  inst.Region,
			AccountID:               ctx.AccountID,
			Profile:                 ctx.Profile,
			Severity:                models.SeverityLow,
			EstimatedMonthlySavings: ec2StoppedLongSavingsUSD,
			Explanation:             fmt.Sprintf("Instance has been stopped for %.0f days.", stoppedDays),
			Recommendation:          "Terminate the instance and snapshot its volumes if the data matters.",
			DetectedAt:              time.Now().UTC(),
			Metadata: map[string]any{
				"instance_type": inst.InstanceType,
				"stopped_days":  int(stoppedDays),
			},
		})
	}
	return findings
}
