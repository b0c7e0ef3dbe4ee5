package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ecrsvc "github.com/aws/aws-sdk-go-v2/service/ecr"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3APIClient is the subset of S3 operations used by the storage collector.
type s3APIClient interface {
	ListBuckets(ctx context.Context, params *s3svc.ListBucketsInput, optFns ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error)
	GetPublicAccessBlock(ctx context.Context, params *s3svc.GetPublicAccessBlockInput, optFns ...func(*s3svc.Options)) (*s3svc.GetPublicAccessBlockOutput, error)
	GetBucketEncryption(ctx context.Context, params *s3svc.GetBucketEncryptionInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error)
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3svc.GetBucketLifecycleConfigurationInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketLifecycleConfigurationOutput, error)
	GetBucketLogging(ctx context.Context, params *s3svc.GetBucketLoggingInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketLoggingOutput, error)
	ListMultipartUploads(ctx context.Context, params *s3svc.ListMultipartUploadsInput, optFns ...func(*s3svc.Options)) (*s3svc.ListMultipartUploadsOutput, error)
}

// ecrAPIClient is the subset of ECR operations used by the storage collector.
type ecrAPIClient interface {
	DescribeRepositories(ctx context.Context, params *ecrsvc.DescribeRepositoriesInput, optFns ...func(*ecrsvc.Options)) (*ecrsvc.DescribeRepositoriesOutput, error)
	DescribeImages(ctx context.Context, params *ecrsvc.DescribeImagesInput, optFns ...func(*ecrsvc.Options)) (*ecrsvc.DescribeImagesOutput, error)
}

// clientSet holds the initialised service clients for one region.
type clientSet struct {
	s3  s3APIClient
	ecr ecrAPIClient
}

// clientFactory creates a clientSet from an aws.Config.
// Swap this in tests to inject mock clients.
type clientFactory func(cfg aws.Config) *clientSet

// newDefaultClients is the production clientFactory.
func newDefaultClients(cfg aws.Config) *clientSet {
	return &clientSet{
		s3:  s3svc.NewFromConfig(cfg),
		ecr: ecrsvc.NewFromConfig(cfg),
	}
}
