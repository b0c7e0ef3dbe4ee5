package cost

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	logssvc "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cesvc "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// ceAPIClient is the subset of Cost Explorer operations used by the cost
// collector.
type ceAPIClient interface {
	GetCostAndUsage(ctx context.Context, params *cesvc.GetCostAndUsageInput, optFns ...func(*cesvc.Options)) (*cesvc.GetCostAndUsageOutput, error)
}

// ec2APIClient is the subset of EC2 operations used by the cost collector.
type ec2APIClient interface {
	DescribeInstances(ctx context.Context, params *ec2svc.DescribeInstancesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2svc.DescribeVolumesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeVolumesOutput, error)
}

// rdsAPIClient is the subset of RDS operations used by the cost collector.
type rdsAPIClient interface {
	DescribeDBInstances(ctx context.Context, params *rdssvc.DescribeDBInstancesInput, optFns ...func(*rdssvc.Options)) (*rdssvc.DescribeDBInstancesOutput, error)
}

// logsAPIClient is the subset of CloudWatch Logs operations used by the
// cost collector.
type logsAPIClient interface {
	DescribeLogGroups(ctx context.Context, params *logssvc.DescribeLogGroupsInput, optFns ...func(*logssvc.Options)) (*logssvc.DescribeLogGroupsOutput, error)
}

// clientSet holds the initialised service clients for one region.
type clientSet struct {
	ce   ceAPIClient
	ec2  ec2APIClient
	rds  rdsAPIClient
	logs logsAPIClient
	cw   common.CloudWatchClient
}

// clientFactory creates a clientSet from an aws.Config.
// Swap this in tests to inject mock clients.
type clientFactory func(cfg aws.Config) *clientSet

// newDefaultClients is the production clientFactory. Cost Explorer is a
// global service only reachable in us-east-1, so its client ignores the
// region carried by cfg.
func newDefaultClients(cfg aws.Config) *clientSet {
	ceCfg := cfg
	ceCfg.Region = "us-east-1"

	return &clientSet{
		ce:   cesvc.NewFromConfig(ceCfg),
		ec2:  ec2svc.NewFromConfig(cfg),
		rds:  rdssvc.NewFromConfig(cfg),
		logs: logssvc.NewFromConfig(cfg),
		cw:   cloudwatch.NewFromConfig(cfg),
	}
}
