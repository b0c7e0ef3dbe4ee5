package traffic

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	apigwsvc "github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	kinesissvc "github.com/aws/aws-sdk-go-v2/service/kinesis"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	sfnsvc "github.com/aws/aws-sdk-go-v2/service/sfn"

	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// apigwAPIClient is the subset of API Gateway operations used by the
// traffic collector.
type apigwAPIClient interface {
	GetRestApis(ctx context.Context, params *apigwsvc.GetRestApisInput, optFns ...func(*apigwsvc.Options)) (*apigwsvc.GetRestApisOutput, error)
	GetStages(ctx context.Context, params *apigwsvc.GetStagesInput, optFns ...func(*apigwsvc.Options)) (*apigwsvc.GetStagesOutput, error)
}

// sfnAPIClient is the subset of Step Functions operations used by the
// traffic collector.
type sfnAPIClient interface {
	ListStateMachines(ctx context.Context, params *sfnsvc.ListStateMachinesInput, optFns ...func(*sfnsvc.Options)) (*sfnsvc.ListStateMachinesOutput, error)
}

// kinesisAPIClient is the subset of Kinesis operations used by the traffic
// collector.
type kinesisAPIClient interface {
	ListStreams(ctx context.Context, params *kinesissvc.ListStreamsInput, optFns ...func(*kinesissvc.Options)) (*kinesissvc.ListStreamsOutput, error)
	DescribeStreamSummary(ctx context.Context, params *kinesissvc.DescribeStreamSummaryInput, optFns ...func(*kinesissvc.Options)) (*kinesissvc.DescribeStreamSummaryOutput, error)
}

// lambdaAPIClient is the subset of Lambda operations used by the traffic
// collector.
type lambdaAPIClient interface {
	ListFunctions(ctx context.Context, params *lambdasvc.ListFunctionsInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.ListFunctionsOutput, error)
}

// elbv2APIClient is the subset of ELBv2 operations used by the traffic
// collector.
type elbv2APIClient interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2svc.DescribeLoadBalancersInput, optFns ...func(*elbv2svc.Options)) (*elbv2svc.DescribeLoadBalancersOutput, error)
}

// clientSet holds the initialised service clients for one region.
type clientSet struct {
	apigw   apigwAPIClient
	sfn     sfnAPIClient
	kinesis kinesisAPIClient
	lambda  lambdaAPIClient
	elbv2   elbv2APIClient
	cw      common.CloudWatchClient
}

// clientFactory creates a clientSet from an aws.Config.
// Swap this in tests to inject mock clients.
type clientFactory func(cfg aws.Config) *clientSet

// newDefaultClients is the production clientFactory.
func newDefaultClients(cfg aws.Config) *clientSet {
	return &clientSet{
		apigw:   apigwsvc.NewFromConfig(cfg),
		sfn:     sfnsvc.NewFromConfig(cfg),
		kinesis: kinesissvc.NewFromConfig(cfg),
		lambda:  lambdasvc.NewFromConfig(cfg),
		elbv2:   elbv2svc.NewFromConfig(cfg),
		cw:      cloudwatch.NewFromConfig(cfg),
	}
}
