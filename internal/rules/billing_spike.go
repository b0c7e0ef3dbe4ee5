package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	billingSpikeRuleID = "BILLING_SPIKE"

	// billingSpikeMultiplier is how many times the trailing average the most
	// recent day's spend must reach before it counts as a spike.
	billingSpikeMultiplier = 2.0

	// billingSpikeTrailingDays is the number of days preceding the latest
	// one used to build the baseline average.
	billingSpikeTrailingDays = 7
)

// BillingSpikeRule compares the most recent day's unblended cost against the
// trailing average and flags the account when the latest day exceeds the
// average by the spike multiplier. At least two days of billing data are
// required; a zero baseline is skipped to avoid dividing noise by nothing.
type BillingSpikeRule struct{}

func (r BillingSpikeRule) ID() string   { return billingSpikeRuleID }
func (r BillingSpikeRule) Name() string { return "Daily Billing Spike" }

// Evaluate returns at most one HIGH finding for the account, emitted when
// the latest daily cost is more than spike_multiplier times the trailing
// average.
func (r BillingSpikeRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Spend == nil || ctx.Snapshot.Spend.Billing == nil {
		return nil
	}
	days := ctx.Snapshot.Spend.Billing.Days
	if len(days) < 2 {
		return nil
	}

	latest := days[len(days)-1]
	baselineDays := days[:len(days)-1]
	if len(baselineDays) > billingSpikeTrailingDays {
		baselineDays = baselineDays[len(baselineDays)-billingSpikeTrailingDays:]
	}

	var total float64
	for _, d := range baselineDays {
		total += d.AmountUSD
	}
	avg := total / float64(len(baselineDays))
	if avg <= 0 {
		return nil
	}

	multiplier := policy.GetThreshold(billingSpikeRuleID, "spike_multiplier", billingSpikeMultiplier, ctx.Policy)
	if latest.AmountUSD <= avg*multiplier {
		return nil
	}

	return []models.Finding{{
		ID:             fmt.Sprintf("%s-%s", billingSpikeRuleID, ctx.AccountID),
		RuleID:         billingSpikeRuleID,
		ResourceID:     ctx.AccountID,
		ResourceType:   models.ResourceAccount,
		Region:         "global",
		AccountID:      ctx.AccountID,
		Profile:        ctx.Profile,
		Severity:       models.SeverityHigh,
		Explanation:    fmt.Sprintf("Spend on %s was $%.2f against a trailing average of $%.2f.", latest.Date, latest.AmountUSD, avg),
		Recommendation: "Break the latest day down by service in Cost Explorer to locate the jump.",
		DetectedAt:     time.Now().UTC(),
		Metadata: map[string]any{
			"latest_date":    latest.Date,
			"latest_usd":     latest.AmountUSD,
			"baseline_usd":   avg,
			"baseline_days":  len(baselineDays),
			"spike_multiple": latest.AmountUSD / avg,
		},
	}}
}
