package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ---------------------------------------------------------------------------
// Shared narrow client interfaces
//
// Each interface covers only the operations this project uses. Narrow
// interfaces instead of full SDK clients make mocking in unit tests trivial:
// a struct returning canned data satisfies the interface.
//
// Domain-specific service interfaces (IAM, S3, Kinesis, ...) live in their
// collector packages; only clients needed across domains are defined here.
// ---------------------------------------------------------------------------

// STSClient is the subset of STS operations used by the profile loader.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// EC2RegionClient is the subset of EC2 operations used for region discovery.
type EC2RegionClient interface {
	DescribeRegions(
		ctx context.Context,
		params *ec2.DescribeRegionsInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeRegionsOutput, error)
}

// CloudWatchClient covers the single CloudWatch operation every
// metric-backed collector uses. See MetricQuery in metrics.go.
type CloudWatchClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// DiscoveryClients holds the clients the provider itself needs: identity
// resolution and region discovery.
type DiscoveryClients struct {
	STS STSClient
	EC2 EC2RegionClient
}

// DiscoveryClientFactory creates DiscoveryClients from an aws.Config.
// Swap this in tests to inject mock clients.
type DiscoveryClientFactory func(cfg aws.Config) *DiscoveryClients

// NewDiscoveryClients is the production DiscoveryClientFactory.
func NewDiscoveryClients(cfg aws.Config) *DiscoveryClients {
	return &DiscoveryClients{
		STS: sts.NewFromConfig(cfg),
		EC2: ec2.NewFromConfig(cfg),
	}
}
