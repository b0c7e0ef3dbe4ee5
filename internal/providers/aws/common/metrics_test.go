package common

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type mockCloudWatch struct {
	lastInput  *cloudwatch.GetMetricStatisticsInput
	datapoints []cwtypes.Datapoint
	err        error
}

func (m *mockCloudWatch) GetMetricStatistics(_ context.Context, params *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.GetMetricStatisticsOutput{Datapoints: m.datapoints}, nil
}

func TestFetchMetricAPIError(t *testing.T) {
	cw := &mockCloudWatch{err: errors.New("throttled")}
	got := FetchMetric(context.Background(), cw, MetricQuery{
		Namespace:  "AWS/Lambda",
		MetricName: "Invocations",
		Statistic:  cwtypes.StatisticSum,
		Days:       14,
	})
	if got.HasData {
		t.Error("API failure must not report a measurement")
	}
}

func TestFetchMetricEmptyDatapoints(t *testing.T) {
	// CloudWatch omits datapoints for sparse count metrics, so an empty
	// Sum result is a confirmed zero; for Average and Maximum it is not.
	t.Run("sum is confirmed zero", func(t *testing.T) {
		cw := &mockCloudWatch{}
		got := FetchMetric(context.Background(), cw, MetricQuery{
			Namespace:  "AWS/Kinesis",
			MetricName: "IncomingRecords",
			Statistic:  cwtypes.StatisticSum,
			Days:       14,
		})
		if !got.HasData || got.Value != 0 {
			t.Errorf("got %+v, want measured 0", got)
		}
	})

	t.Run("average stays unmeasured", func(t *testing.T) {
		cw := &mockCloudWatch{}
		got := FetchMetric(context.Background(), cw, MetricQuery{
			Namespace:  "AWS/EC2",
			MetricName: "CPUUtilization",
			Statistic:  cwtypes.StatisticAverage,
			Days:       14,
		})
		if got.HasData {
			t.Errorf("got %+v, want no data", got)
		}
	})

	t.Run("maximum stays unmeasured", func(t *testing.T) {
		cw := &mockCloudWatch{}
		got := FetchMetric(context.Background(), cw, MetricQuery{
			Namespace:  "AWS/Lambda",
			MetricName: "Duration",
			Statistic:  cwtypes.StatisticMaximum,
			Days:       14,
		})
		if got.HasData {
			t.Errorf("got %+v, want no data", got)
		}
	})
}

func TestFetchMetricFolding(t *testing.T) {
	t.Run("sum adds datapoints", func(t *testing.T) {
		cw := &mockCloudWatch{datapoints: []cwtypes.Datapoint{
			{Sum: aws.Float64(10)},
			{Sum: aws.Float64(5)},
			{Sum: nil},
		}}
		got := FetchMetric(context.Background(), cw, MetricQuery{Statistic: cwtypes.StatisticSum, Days: 7})
		if !got.HasData || got.Value != 15 {
			t.Errorf("got %+v, want measured 15", got)
		}
	})

	t.Run("maximum takes the largest datapoint", func(t *testing.T) {
		cw := &mockCloudWatch{datapoints: []cwtypes.Datapoint{
			{Maximum: aws.Float64(3)},
			{Maximum: aws.Float64(9)},
			{Maximum: aws.Float64(7)},
		}}
		got := FetchMetric(context.Background(), cw, MetricQuery{Statistic: cwtypes.StatisticMaximum, Days: 7})
		if !got.HasData || got.Value != 9 {
			t.Errorf("got %+v, want measured 9", got)
		}
	})

	t.Run("average means the datapoint averages", func(t *testing.T) {
		cw := &mockCloudWatch{datapoints: []cwtypes.Datapoint{
			{Average: aws.Float64(10)},
			{Average: aws.Float64(20)},
		}}
		got := FetchMetric(context.Background(), cw, MetricQuery{Statistic: cwtypes.StatisticAverage, Days: 7})
		if !got.HasData || got.Value != 15 {
			t.Errorf("got %+v, want measured 15", got)
		}
	})

	t.Run("maximum with only nil datapoints stays unmeasured", func(t *testing.T) {
		cw := &mockCloudWatch{datapoints: []cwtypes.Datapoint{{Maximum: nil}}}
		got := FetchMetric(context.Background(), cw, MetricQuery{Statistic: cwtypes.StatisticMaximum, Days: 7})
		if got.HasData {
			t.Errorf("got %+v, want no data", got)
		}
	})
}

func TestFetchMetricRequestShape(t *testing.T) {
	cw := &mockCloudWatch{}
	FetchMetric(context.Background(), cw, MetricQuery{
		Namespace:  "AWS/ApplicationELB",
		MetricName: "RequestCount",
		Dimensions: map[string]string{"LoadBalancer": "app/web/abc"},
		Statistic:  cwtypes.StatisticSum,
		Days:       14,
	})

	in := cw.lastInput
	if in == nil {
		t.Fatal("no request captured")
	}
	if aws.ToString(in.Namespace) != "AWS/ApplicationELB" {
		t.Errorf("Namespace = %q", aws.ToString(in.Namespace))
	}
	if aws.ToString(in.MetricName) != "RequestCount" {
		t.Errorf("MetricName = %q", aws.ToString(in.MetricName))
	}
	if aws.ToInt32(in.Period) != 86400 {
		t.Errorf("Period = %d, want the one-day default", aws.ToInt32(in.Period))
	}
	if len(in.Dimensions) != 1 || aws.ToString(in.Dimensions[0].Name) != "LoadBalancer" {
		t.Errorf("Dimensions = %+v", in.Dimensions)
	}
	window := in.EndTime.Sub(aws.ToTime(in.StartTime))
	if days := int(window.Hours() / 24); days != 14 {
		t.Errorf("lookback window = %d days, want 14", days)
	}
}
