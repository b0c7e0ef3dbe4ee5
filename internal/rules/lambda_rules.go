package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	lambdaTimeoutNearLimitRuleID = "LAMBDA_TIMEOUT_NEAR_LIMIT"

	// lambdaTimeoutWarnPercent is the fraction of the configured timeout at
	// which the observed maximum duration starts to look like an imminent
	// timeout rather than headroom.
	lambdaTimeoutWarnPercent = 80.0

	lambdaUnusedRuleID = "LAMBDA_UNUSED"
)

// LambdaTimeoutNearLimitRule flags functions whose observed maximum duration
// over the lookback window approaches the configured timeout. Functions with
// no duration data are skipped.
type LambdaTimeoutNearLimitRule struct{}

func (r LambdaTimeoutNearLimitRule) ID() string   { return lambdaTimeoutNearLimitRuleID }
func (r LambdaTimeoutNearLimitRule) Name() string { return "Lambda Near Timeout" }

// Evaluate returns one MEDIUM finding per function whose max duration is at
// or above warn_percent of its timeout.
func (r LambdaTimeoutNearLimitRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	snap := ctx.Snapshot.Traffic

	var findings []models.Finding
	for _, fn := range snap.Functions {
		if fn.TimeoutSeconds <= 0 {
			continue
		}
		if !fn.MaxDurationMS.HasData {
			continue
		}
		warnPercent := policy.GetThreshold(lambdaTimeoutNearLimitRuleID, "warn_percent", lambdaTimeoutWarnPercent, ctx.Policy)
		timeoutMS := float64(fn.TimeoutSeconds) * 1000
		usedPercent := fn.MaxDurationMS.Value / timeoutMS * 100
		if usedPercent < warnPercent {
			continue
		}

		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", lambdaTimeoutNearLimitRuleID, fn.Name),
			RuleID:         lambdaTimeoutNearLimitRuleID,
			ResourceID:     fn.Name,
			ResourceType:   models.ResourceLambda,
			Region:         fn.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityMedium,
			Explanation:    fmt.Sprintf("Function %q peaked at %.0f%% of its %ds timeout.", fn.Name, usedPercent, fn.TimeoutSeconds),
			Recommendation: "Raise the timeout or optimise the slow path before invocations start failing.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"timeout_seconds": fn.TimeoutSeconds,
				"max_duration_ms": fn.MaxDurationMS.Value,
				"used_percent":    usedPercent,
			},
		})
	}
	return findings
}

// LambdaUnusedRule flags functions with a confirmed zero invocation count
// over the lookback window. Functions whose invocation metric could not be
// fetched are skipped.
type LambdaUnusedRule struct{}

func (r LambdaUnusedRule) ID() string   { return lambdaUnusedRuleID }
func (r LambdaUnusedRule) Name() string { return "Unused Lambda Function" }

// Evaluate returns one LOW finding per function with zero invocations.
func (r LambdaUnusedRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	snap := ctx.Snapshot.Traffic

	var findings []models.Finding
	for _, fn := range snap.Functions {
		if !fn.Invocations.HasData {
			continue
		}
		if fn.Invocations.Value != 0 {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", lambdaUnusedRuleID, fn.Name),
			RuleID:         lambdaUnusedRuleID,
			ResourceID:     fn.Name,
			ResourceType:   models.ResourceLambda,
			Region:         fn.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Function %q was not invoked over the last %d days.", fn.Name, snap.LookbackDays),
			Recommendation: "Delete the function or its obsolete trigger.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"lookback_days": snap.LookbackDays,
			},
		})
	}
	return findings
}
