package common

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/opsaudit/opsaudit/internal/models"
)

// MetricQuery describes a single CloudWatch lookback-window evaluation:
// one metric, one dimension set, one statistic, aggregated over the window.
// It is the shared mechanism behind every metric-backed rule in the auditor.
type MetricQuery struct {
	// Namespace is the CloudWatch namespace, e.g. "AWS/Lambda".
	Namespace string

	// MetricName is the metric to query, e.g. "Invocations".
	MetricName string

	// Dimensions identify the resource, e.g. {"FunctionName": "ingest"}.
	Dimensions map[string]string

	// Statistic selects how each datapoint is computed.
	Statistic cwtypes.Statistic

	// Days is the lookback window; the query covers [now-Days, now).
	Days int

	// PeriodSeconds is the datapoint granularity. Defaults to 86400 (1 day)
	// when zero, keeping a 30-day window at or under 30 datapoints.
	PeriodSeconds int32
}

// FetchMetric runs query against cw and folds the returned datapoints into a
// single value: Sum statistics are summed across datapoints, Maximum takes
// the largest datapoint, and Average is the mean of datapoint averages.
//
// The result's HasData is false when the call fails, and callers must treat
// that as "no measurement", never as a confirmed zero: collapsing API
// failures into zero-valued defaults is how silent audit gaps are born.
//
// A successful call with no datapoints depends on the statistic. CloudWatch
// omits datapoints entirely for sparse count metrics, so for Sum an empty
// result is a confirmed zero (the stream really received nothing); for
// Average and Maximum an empty result means nothing was measured and
// HasData stays false.
func FetchMetric(ctx context.Context, cw CloudWatchClient, query MetricQuery) models.MetricValue {
	period := query.PeriodSeconds
	if period == 0 {
		period = 86400
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -query.Days)

	dims := make([]cwtypes.Dimension, 0, len(query.Dimensions))
	for name, value := range query.Dimensions {
		dims = append(dims, cwtypes.Dimension{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}

	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(query.Namespace),
		MetricName: aws.String(query.MetricName),
		Dimensions: dims,
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(period),
		Statistics: []cwtypes.Statistic{query.Statistic},
	})
	if err != nil {
		return models.NoData()
	}
	if len(out.Datapoints) == 0 {
		if query.Statistic == cwtypes.StatisticSum {
			return models.Measured(0)
		}
		return models.NoData()
	}

	switch query.Statistic {
	case cwtypes.StatisticSum:
		var total float64
		for _, dp := range out.Datapoints {
			if dp.Sum != nil {
				total += *dp.Sum
			}
		}
		return models.Measured(total)

	case cwtypes.StatisticMaximum:
		var max float64
		var seen bool
		for _, dp := range out.Datapoints {
			if dp.Maximum != nil && (!seen || *dp.Maximum > max) {
				max = *dp.Maximum
				seen = true
			}
		}
		if !seen {
			return models.NoData()
		}
		return models.Measured(max)

	case cwtypes.StatisticAverage:
		var total float64
		var count int
		for _, dp := range out.Datapoints {
			if dp.Average != nil {
				total += *dp.Average
				count++
			}
		}
		if count == 0 {
			return models.NoData()
		}
		return models.Measured(total / float64(count))

	default:
		return models.NoData()
	}
}
