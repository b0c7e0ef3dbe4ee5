package traffic

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	sfnsvc "github.com/aws/aws-sdk-go-v2/service/sfn"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// collectStateMachines returns all Step Functions state machines in region,
// each enriched with its ExecutionsFailed sum over the lookback window.
func collectStateMachines(
	ctx context.Context,
	sfn sfnAPIClient,
	cw common.CloudWatchClient,
	region string,
	daysBack int,
) ([]models.StateMachine, error) {
	paginator := sfnsvc.NewListStateMachinesPaginator(sfn, &sfnsvc.ListStateMachinesInput{})

	var machines []models.StateMachine
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list state machines: %w", err)
		}
		for _, sm := range page.StateMachines {
			arn := aws.ToString(sm.StateMachineArn)
			machines = append(machines, models.StateMachine{
				Name:   aws.ToString(sm.Name),
				ARN:    arn,
				Region: region,
				FailedExecutions: common.FetchMetric(ctx, cw, common.MetricQuery{
					Namespace:  "AWS/States",
					MetricName: "ExecutionsFailed",
					Dimensions: map[string]string{"StateMachineArn": arn},
					Statistic:  cwtypes.StatisticSum,
					Days:       daysBack,
				}),
			})
		}
	}
	return machines, nil
}
