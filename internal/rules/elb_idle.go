package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	elbIdleRuleID = "ELB_IDLE"

	// elbMinRequests is the request (or flow) count below which a load
	// balancer is considered idle over the lookback window.
	elbMinRequests = 100.0

	// elbIdleSavingsUSD is the fixed hourly cost of an idle ALB/NLB
	// (~$0.0225/hour) excluding LCU charges.
	elbIdleSavingsUSD = 16.0
)

// ELBIdleRule flags application and network load balancers that served fewer
// requests (ALB) or new flows (NLB) than the threshold over the lookback
// window. Load balancers whose metric could not be fetched are skipped.
type ELBIdleRule struct{}

func (r ELBIdleRule) ID() string   { return elbIdleRuleID }
func (r ELBIdleRule) Name() string { return "Idle Load Balancer" }

// Evaluate returns one MEDIUM finding per load balancer below min_requests.
func (r ELBIdleRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	snap := ctx.Snapshot.Traffic

	var findings []models.Finding
	for _, lb := range snap.LoadBalancers {
		if !lb.RequestCount.HasData {
			continue
		}
		minRequests := policy.GetThreshold(elbIdleRuleID, "min_requests", elbMinRequests, ctx.Policy)
		if lb.RequestCount.Value >= minRequests {
			continue
		}
		findings = append(findings, models.Finding{
			ID:                      fmt.Sprintf("%s-%s", elbIdleRuleID, lb.Name),
			RuleID:                  elbIdleRuleID,
			ResourceID:              lb.Name,
			ResourceType:            models.ResourceLoadBalancer,
			Region:                  lb.Region,
			AccountID:               ctx.AccountID,
			Profile:                 ctx.Profile,
			Severity:                models.SeverityMedium,
			EstimatedMonthlySavings: elbIdleSavingsUSD,
			Explanation:             fmt.Sprintf("Load balancer %q served %.0f requests over the last %d days.", lb.Name, lb.RequestCount.Value, snap.LookbackDays),
			Recommendation:          "Delete the load balancer or consolidate its targets behind a shared one.",
			DetectedAt:              time.Now().UTC(),
			Metadata: map[string]any{
				"type":          lb.Type,
				"request_count": lb.RequestCount.Value,
				"lookback_days": snap.LookbackDays,
			},
		})
	}
	return findings
}
