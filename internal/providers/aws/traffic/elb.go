package traffic

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// collectLoadBalancers returns all ALBs and NLBs in region with their
// request activity over the lookback window. ALBs report RequestCount;
// NLBs have no RequestCount metric, so ActiveFlowCount stands in.
func collectLoadBalancers(
	ctx context.Context,
	elb elbv2APIClient,
	cw common.CloudWatchClient,
	region string,
	daysBack int,
) ([]models.LoadBalancer, error) {
	paginator := elbv2svc.NewDescribeLoadBalancersPaginator(elb, &elbv2svc.DescribeLoadBalancersInput{})

	var lbs []models.LoadBalancer
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			arn := aws.ToString(lb.LoadBalancerArn)
			lbType := string(lb.Type)

			namespace, metric := "AWS/ApplicationELB", "RequestCount"
			if lbType == "network" {
				namespace, metric = "AWS/NetworkELB", "ActiveFlowCount"
			}

			lbs = append(lbs, models.LoadBalancer{
				Name:   aws.ToString(lb.LoadBalancerName),
				ARN:    arn,
				Type:   lbType,
				Region: region,
				RequestCount: common.FetchMetric(ctx, cw, common.MetricQuery{
					Namespace:  namespace,
					MetricName: metric,
					Dimensions: map[string]string{"LoadBalancer": metricDimension(arn)},
					Statistic:  cwtypes.StatisticSum,
					Days:       daysBack,
				}),
			})
		}
	}
	return lbs, nil
}

// metricDimension extracts the CloudWatch LoadBalancer dimension value from
// a load balancer ARN: the part after ":loadbalancer/", e.g.
// "app/my-alb/50dc6c495c0c9188".
func metricDimension(arn string) string {
	const marker = ":loadbalancer/"
	if i := strings.Index(arn, marker); i >= 0 {
		return arn[i+len(marker):]
	}
	return arn
}
