package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	sfnExecutionsFailingRuleID = "SFN_EXECUTIONS_FAILING"

	// sfnMaxFailedExecutions tolerates transient retry noise before flagging
	// a state machine as systematically failing.
	sfnMaxFailedExecutions = 5.0
)

// SFNExecutionsFailingRule flags state machines whose failed execution count
// over the lookback window exceeds the threshold. State machines whose
// failure metric could not be fetched are skipped.
type SFNExecutionsFailingRule struct{}

func (r SFNExecutionsFailingRule) ID() string   { return sfnExecutionsFailingRuleID }
func (r SFNExecutionsFailingRule) Name() string { return "State Machine Executions Failing" }

// Evaluate returns one HIGH finding per state machine with more than
// max_failed failed executions.
func (r SFNExecutionsFailingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	snap := ctx.Snapshot.Traffic

	var findings []models.Finding
	for _, sm := range snap.StateMachines {
		if !sm.FailedExecutions.HasData {
			continue
		}
		maxFailed := policy.GetThreshold(sfnExecutionsFailingRuleID, "max_failed", sfnMaxFailedExecutions, ctx.Policy)
		if sm.FailedExecutions.Value <= maxFailed {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", sfnExecutionsFailingRuleID, sm.Name),
			RuleID:         sfnExecutionsFailingRuleID,
			ResourceID:     sm.Name,
			ResourceType:   models.ResourceStateMachine,
			Region:         sm.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityHigh,
			Explanation:    fmt.Sprintf("State machine %q had %.0f failed executions over the last %d days.", sm.Name, sm.FailedExecutions.Value, snap.LookbackDays),
			Recommendation: "Inspect recent failed executions and fix or add retry handling for the failing states.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"state_machine_arn": sm.ARN,
				"failed_count":      sm.FailedExecutions.Value,
				"lookback_days":     snap.LookbackDays,
			},
		})
	}
	return findings
}
