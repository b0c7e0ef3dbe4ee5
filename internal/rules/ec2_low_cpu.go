package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	ec2LowCPURuleID = "EC2_LOW_CPU"

	// ec2LowCPUMaxPercent is the average CPU below which an instance is
	// considered overprovisioned. 10% catches clearly idle machines while
	// avoiding noisy false positives.
	ec2LowCPUMaxPercent = 10.0

	// ec2LowCPUSavingsUSD is a placeholder for ~30% of a typical
	// general-purpose instance monthly on-demand cost ($100 baseline → $30
	// saving). Replace with real pricing data when a pricing service is
	// available.
	ec2LowCPUSavingsUSD = 30.0
)

// EC2LowCPURule flags running instances whose average CPU utilisation over
// the lookback window is below the threshold. Instances without CPU data
// are skipped: an unavailable metric is not evidence of idleness.
type EC2LowCPURule struct{}

func (r EC2LowCPURule) ID() string   { return ec2LowCPURuleID }
func (r EC2LowCPURule) Name() string { return "Low CPU EC2 Instance" }

// Evaluate returns one MEDIUM finding per running instance whose measured
// average CPU is below max_cpu_percent.
func (r EC2LowCPURule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Spend == nil {
		return nil
	}
	snap := ctx.Snapshot.Spend

	var findings []models.Finding
	for _, inst := range snap.Instances {
		if inst.State != "running" {
			continue
		}
		if !inst.AvgCPU.HasData {
			continue
		}
		maxCPU := policy.GetThreshold(ec2LowCPURuleID, "max_cpu_percent", ec2LowCPUMaxPercent, ctx.Policy)
		if inst.AvgCPU.Value >= maxCPU {
			continue
		}

		findings = append(findings, models.Finding{
			ID:                      fmt.Sprintf("%s-%s", ec2LowCPURuleID, inst.InstanceID),
			RuleID:                  ec2LowCPURuleID,
			ResourceID:              inst.InstanceID,
			ResourceType:            models.ResourceEC2Instance,
			Region:                  inst.Region,
			AccountID:               ctx.AccountID,
			Profile:                 ctx.Profile,
			Severity:                models.SeverityMedium,
			EstimatedMonthlySavings: ec2LowCPUSavingsUSD,
			Explanation:             fmt.Sprintf("Instance averaged %.1f%% CPU over the last %d days.", inst.AvgCPU.Value, snap.LookbackDays),
			Recommendation:          "Review instance sizing and consider downsizing or a Savings Plan.",
			DetectedAt:              time.Now().UTC(),
			Metadata: map[string]any{
				"instance_type":   inst.InstanceType,
				"avg_cpu_percent": inst.AvgCPU.Value,
			},
		})
	}
	return findings
}
