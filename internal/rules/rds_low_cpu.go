package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	rdsLowCPURuleID = "RDS_LOW_CPU"

	// rdsLowCPUMaxPercent is tighter than the EC2 equivalent because
	// databases idle at a few percent even under light query load.
	rdsLowCPUMaxPercent = 5.0

	// rdsLowCPUSavingsUSD is a placeholder for downsizing one instance
	// class on a typical db.m-family instance.
	rdsLowCPUSavingsUSD = 50.0
)

// RDSLowCPURule flags available DB instances whose average CPU utilisation
// over the lookback window is below the threshold. Instances without CPU
// data are skipped.
type RDSLowCPURule struct{}

func (r RDSLowCPURule) ID() string   { return rdsLowCPURuleID }
func (r RDSLowCPURule) Name() string { return "Low CPU RDS Instance" }

// Evaluate returns one MEDIUM finding per available DB instance whose
// measured average CPU is below max_cpu_percent.
func (r RDSLowCPURule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Spend == nil {
		return nil
	}
	snap := ctx.Snapshot.Spend

	var findings []models.Finding
	for _, db := range snap.DBInstances {
		if db.Status != "available" {
			continue
		}
		if !db.AvgCPU.HasData {
			continue
		}
		maxCPU := policy.GetThreshold(rdsLowCPURuleID, "max_cpu_percent", rdsLowCPUMaxPercent, ctx.Policy)
		if db.AvgCPU.Value >= maxCPU {
			continue
		}

		findings = append(findings, models.Finding{
			ID:                      fmt.Sprintf("%s-%s", rdsLowCPURuleID, db.DBInstanceID),
			RuleID:                  rdsLowCPURuleID,
			ResourceID:              db.DBInstanceID,
			ResourceType:            models.ResourceRDSInstance,
			Region:                  db.Region,
			AccountID:               ctx.AccountID,
			Profile:                 ctx.Profile,
			Severity:                models.SeverityMedium,
			EstimatedMonthlySavings: rdsLowCPUSavingsUSD,
			Explanation:             fmt.Sprintf("DB instance averaged %.1f%% CPU over the last %d days.", db.AvgCPU.Value, snap.LookbackDays),
			Recommendation:          "Downsize the instance class or consolidate databases.",
			DetectedAt:              time.Now().UTC(),
			Metadata: map[string]any{
				"instance_class":  db.DBInstanceClass,
				"engine":          db.Engine,
				"avg_cpu_percent": db.AvgCPU.Value,
			},
		})
	}
	return findings
}
