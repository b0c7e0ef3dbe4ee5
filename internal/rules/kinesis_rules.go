package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	kinesisStreamIdleRuleID = "KINESIS_STREAM_IDLE"

	// kinesisMinIncomingRecords is the record count below which a stream is
	// considered idle over the lookback window.
	kinesisMinIncomingRecords = 1.0

	// kinesisStreamIdleSavingsUSD is the fixed shard-hour cost of a single
	// provisioned shard (~$0.015/hour). Idle streams usually run one shard.
	kinesisStreamIdleSavingsUSD = 11.0

	kinesisLowRetentionRuleID = "KINESIS_LOW_RETENTION"

	// kinesisMinRetentionHours is the shortest retention that still allows a
	// consumer outage to be replayed. 24 hours is the service default.
	kinesisMinRetentionHours = 24.0
)

// KinesisStreamIdleRule flags streams that received fewer records than the
// threshold over the lookback window. A confirmed zero counts as idle;
// streams whose metric could not be fetched are skipped.
type KinesisStreamIdleRule struct{}

func (r KinesisStreamIdleRule) ID() string   { return kinesisStreamIdleRuleID }
func (r KinesisStreamIdleRule) Name() string { return "Idle Kinesis Stream" }

// Evaluate returns one MEDIUM finding per stream whose incoming record count
// is below min_records.
func (r KinesisStreamIdleRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	snap := ctx.Snapshot.Traffic

	var findings []models.Finding
	for _, st := range snap.Streams {
		if !st.IncomingRecords.HasData {
			continue
		}
		minRecords := policy.GetThreshold(kinesisStreamIdleRuleID, "min_records", kinesisMinIncomingRecords, ctx.Policy)
		if st.IncomingRecords.Value >= minRecords {
			continue
		}
		findings = append(findings, models.Finding{
			ID:                      fmt.Sprintf("%s-%s", kinesisStreamIdleRuleID, st.Name),
			RuleID:                  kinesisStreamIdleRuleID,
			ResourceID:              st.Name,
			ResourceType:            models.ResourceStream,
			Region:                  st.Region,
			AccountID:               ctx.AccountID,
			Profile:                 ctx.Profile,
			Severity:                models.SeverityMedium,
			EstimatedMonthlySavings: kinesisStreamIdleSavingsUSD,
			Explanation:             fmt.Sprintf("Stream %q received %.0f records over the last %d days.", st.Name, st.IncomingRecords.Value, snap.LookbackDays),
			Recommendation:          "Delete the stream if its producers have been retired.",
			DetectedAt:              time.Now().UTC(),
			Metadata: map[string]any{
				"incoming_records": st.IncomingRecords.Value,
				"lookback_days":    snap.LookbackDays,
			},
		})
	}
	return findings
}

// KinesisLowRetentionRule flags streams whose retention period is below the
// minimum. Streams with unknown retention (summary lookup failed) are
// skipped.
type KinesisLowRetentionRule struct{}

func (r KinesisLowRetentionRule) ID() string   { return kinesisLowRetentionRuleID }
func (r KinesisLowRetentionRule) Name() string { return "Kinesis Retention Too Short" }

// Evaluate returns one LOW finding per stream with retention below
// min_retention_hours.
func (r KinesisLowRetentionRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Traffic == nil {
		return nil
	}
	var findings []models.Finding
	for _, st := range ctx.Snapshot.Traffic.Streams {
		if st.RetentionHours == 0 {
			continue // retention unknown
		}
		minRetention := policy.GetThreshold(kinesisLowRetentionRuleID, "min_retention_hours", kinesisMinRetentionHours, ctx.Policy)
		if float64(st.RetentionHours) >= minRetention {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", kinesisLowRetentionRuleID, st.Name),
			RuleID:         kinesisLowRetentionRuleID,
			ResourceID:     st.Name,
			ResourceType:   models.ResourceStream,
			Region:         st.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Stream %q retains records for only %d hours.", st.Name, st.RetentionHours),
			Recommendation: "Increase retention so a consumer outage can be replayed.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"retention_hours": st.RetentionHours,
			},
		})
	}
	return findings
}
