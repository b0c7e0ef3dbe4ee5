package cost

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// collectRDSInstances pages through all RDS database instances in region and
// enriches available instances with their average CPUUtilization over the
// lookback window.
func collectRDSInstances(
	ctx context.Context,
	rdsClient rdsAPIClient,
	cw common.CloudWatchClient,
	region string,
	daysBack int,
) ([]models.RDSInstance, error) {
	paginator := rdssvc.NewDescribeDBInstancesPaginator(rdsClient, &rdssvc.DescribeDBInstancesInput{})

	var instances []models.RDSInstance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe DB instances: %w", err)
		}
		for _, db := range page.DBInstances {
			inst := models.RDSInstance{
				DBInstanceID:    aws.ToString(db.DBInstanceIdentifier),
				Region:          region,
				DBInstanceClass: aws.ToString(db.DBInstanceClass),
				Engine:          aws.ToString(db.Engine),
				Status:          aws.ToString(db.DBInstanceStatus),
			}
			if inst.Status == "available" {
				inst.AvgCPU = common.FetchMetric(ctx, cw, common.MetricQuery{
					Namespace:  "AWS/RDS",
					MetricName: "CPUUtilization",
					Dimensions: map[string]string{"DBInstanceIdentifier": inst.DBInstanceID},
					Statistic:  cwtypes.StatisticAverage,
					Days:       daysBack,
				})
			}
			instances = append(instances, inst)
		}
	}
	return instances, nil
}
