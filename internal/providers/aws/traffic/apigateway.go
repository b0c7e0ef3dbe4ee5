package traffic

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	apigwsvc "github.com/aws/aws-sdk-go-v2/service/apigateway"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// collectAPIStages returns every stage of every REST API in region, enriched
// with the 5XXError sum over the lookback window. Stage listing failures for
// a single API are skipped; a metric failure leaves Error5XX empty-handed
// (HasData false) rather than zero.
func collectAPIStages(
	ctx context.Context,
	apigw apigwAPIClient,
	cw common.CloudWatchClient,
	region string,
	daysBack int,
) ([]models.APIStage, error) {
	paginator := apigwsvc.NewGetRestApisPaginator(apigw, &apigwsvc.GetRestApisInput{})

	var stages []models.APIStage
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list REST APIs: %w", err)
		}
		for _, api := range page.Items {
			apiID := aws.ToString(api.Id)
			apiName := aws.ToString(api.Name)

			out, err := apigw.GetStages(ctx, &apigwsvc.GetStagesInput{
				RestApiId: aws.String(apiID),
			})
			if err != nil {
				continue
			}
			for _, st := range out.Item {
				stageName := aws.ToString(st.StageName)
				stages = append(stages, models.APIStage{
					APIID:            apiID,
					APIName:          apiName,
					StageName:        stageName,
					Region:           region,
					AccessLogEnabled: st.AccessLogSettings != nil && st.AccessLogSettings.DestinationArn != nil,
					Error5XX: common.FetchMetric(ctx, cw, common.MetricQuery{
						Namespace:  "AWS/ApiGateway",
						MetricName: "5XXError",
						Dimensions: map[string]string{
							"ApiName": apiName,
							"Stage":   stageName,
						},
						Statistic: cwtypes.StatisticSum,
						Days:      daysBack,
					}),
				})
			}
		}
	}
	return stages, nil
}
