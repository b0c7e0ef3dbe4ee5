package traffic

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// collectLambdaFunctions returns all Lambda functions in region, enriched
// with the maximum Duration and total Invocations over the lookback window.
func collectLambdaFunctions(
	ctx context.Context,
	lam lambdaAPIClient,
	cw common.CloudWatchClient,
	region string,
	daysBack int,
) ([]models.LambdaFunction, error) {
	paginator := lambdasvc.NewListFunctionsPaginator(lam, &lambdasvc.ListFunctionsInput{})

	var functions []models.LambdaFunction
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list Lambda functions: %w", err)
		}
		for _, fn := range page.Functions {
			name := aws.ToString(fn.FunctionName)
			functions = append(functions, models.LambdaFunction{
				Name:           name,
				Region:         region,
				TimeoutSeconds: aws.ToInt32(fn.Timeout),
				MaxDurationMS: common.FetchMetric(ctx, cw, common.MetricQuery{
					Namespace:  "AWS/Lambda",
					MetricName: "Duration",
					Dimensions: map[string]string{"FunctionName": name},
					Statistic:  cwtypes.StatisticMaximum,
					Days:       daysBack,
				}),
				Invocations: common.FetchMetric(ctx, cw, common.MetricQuery{
					Namespace:  "AWS/Lambda",
					MetricName: "Invocations",
					Dimensions: map[string]string{"FunctionName": name},
					Statistic:  cwtypes.StatisticSum,
					Days:       daysBack,
				}),
			})
		}
	}
	return functions, nil
}
