package traffic

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	kinesissvc "github.com/aws/aws-sdk-go-v2/service/kinesis"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// collectKinesisStreams returns all Kinesis data streams in region with
// their retention period and IncomingRecords sum over the lookback window.
// A failed DescribeStreamSummary leaves RetentionHours at zero, which the
// retention rule treats as "unknown" and skips.
func collectKinesisStreams(
	ctx context.Context,
	kin kinesisAPIClient,
	cw common.CloudWatchClient,
	region string,
	daysBack int,
) ([]models.KinesisStream, error) {
	paginator := kinesissvc.NewListStreamsPaginator(kin, &kinesissvc.ListStreamsInput{})

	var streams []models.KinesisStream
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list Kinesis streams: %w", err)
		}
		for _, name := range page.StreamNames {
			stream := models.KinesisStream{
				Name:   name,
				Region: region,
				IncomingRecords: common.FetchMetric(ctx, cw, common.MetricQuery{
					Namespace:  "AWS/Kinesis",
					MetricName: "IncomingRecords",
					Dimensions: map[string]string{"StreamName": name},
					Statistic:  cwtypes.StatisticSum,
					Days:       daysBack,
				}),
			}
			if summary, err := kin.DescribeStreamSummary(ctx, &kinesissvc.DescribeStreamSummaryInput{
				StreamName: aws.String(name),
			}); err == nil && summary.StreamDescriptionSummary != nil {
				stream.RetentionHours = aws.ToInt32(summary.StreamDescriptionSummary.RetentionPeriodHours)
			}
			streams = append(streams, stream)
		}
	}
	return streams, nil
}
