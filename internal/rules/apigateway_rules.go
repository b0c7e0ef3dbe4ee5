package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	apigwHigh5XXRuleID = "APIGW_HIGH_5XX"

	// apigwMax5XXErrors is the total 5XX count over the lookback window
	// above which a stage is considered unhealthy.
	apigwMax5XXErrors = 25.0
)

// APIGWStageNoLoggingRule flags REST API stages without access logging.
// Without an access log destination there is no per-request record of who
// called the API or what it returned.
type APIGWStageNoLoggingRule struct{}

func (r APIGWStageNoLoggingRule) ID() string   { return "APIGW_STAGE_NO_LOGGING" }
func (r APIGWStageNoLoggingRule) Name() string { return "API Stage Without Access Logging" }

// Evaluate returns one MEDIUM finding per stage with no access log
// destination configured.
func (r APIGWStageNoLoggingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	var findings []models.Finding
	for _, st := range ctx.Snapshot.Traffic.Stages {
		if st.AccessLogEnabled {
			continue
		}
		resourceID := fmt.Sprintf("%s/%s", st.APIID, st.StageName)
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), resourceID),
			RuleID:         r.ID(),
			ResourceID:     resourceID,
			ResourceType:   models.ResourceAPIStage,
			Region:         st.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityMedium,
			Explanation:    fmt.Sprintf("Stage %q of API %q has no access logging destination.", st.StageName, st.APIName),
			Recommendation: "Configure an access log destination (CloudWatch Logs) for the stage.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"api_name": st.APIName,
			},
		})
	}
	return findings
}

// APIGWHigh5XXRule flags stages whose accumulated 5XX error count over the
// lookback window exceeds the threshold. Stages with no error metric
// available are skipped rather than assumed healthy.
type APIGWHigh5XXRule struct{}

func (r APIGWHigh5XXRule) ID() string   { return apigwHigh5XXRuleID }
func (r APIGWHigh5XXRule) Name() string { return "API Stage High 5XX Rate" }

// Evaluate returns one HIGH finding per stage whose 5XX total exceeds
// max_errors.
func (r APIGWHigh5XXRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	snap := ctx.Snapshot.Traffic

	var findings []models.Finding
	for _, st := range snap.Stages {
		if !st.Error5XX.HasData {
			continue // metric unavailable; healthy cannot be assumed
		}
		maxErrors := policy.GetThreshold(apigwHigh5XXRuleID, "max_errors", apigwMax5XXErrors, ctx.Policy)
		if st.Error5XX.Value <= maxErrors {
			continue
		}
		resourceID := fmt.Sprintf("%s/%s", st.APIID, st.StageName)
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", apigwHigh5XXRuleID, resourceID),
			RuleID:         apigwHigh5XXRuleID,
			ResourceID:     resourceID,
			ResourceType:   models.ResourceAPIStage,
			Region:         st.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityHigh,
			Explanation:    fmt.Sprintf("Stage %q of API %q returned %.0f server errors over the last %d days.", st.StageName, st.APIName, st.Error5XX.Value, snap.LookbackDays),
			Recommendation: "Inspect the backend integration logs for the failing routes.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"api_name":      st.APIName,
				"error_count":   st.Error5XX.Value,
				"lookback_days": snap.LookbackDays,
			},
		})
	}
	return findings
}
