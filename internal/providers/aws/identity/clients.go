package identity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	kmssvc "github.com/aws/aws-sdk-go-v2/service/kms"
	smsvc "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// iamAPIClient is the subset of IAM operations used by the identity collector.
type iamAPIClient interface {
	ListUsers(ctx context.Context, params *iamsvc.ListUsersInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListUsersOutput, error)
	ListMFADevices(ctx context.Context, params *iamsvc.ListMFADevicesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListMFADevicesOutput, error)
	GetLoginProfile(ctx context.Context, params *iamsvc.GetLoginProfileInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetLoginProfileOutput, error)
	ListAccessKeys(ctx context.Context, params *iamsvc.ListAccessKeysInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListAccessKeysOutput, error)
	ListPolicies(ctx context.Context, params *iamsvc.ListPoliciesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListPoliciesOutput, error)
	GetPolicyVersion(ctx context.Context, params *iamsvc.GetPolicyVersionInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetPolicyVersionOutput, error)
	ListRoles(ctx context.Context, params *iamsvc.ListRolesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListRolesOutput, error)
	GetRole(ctx context.Context, params *iamsvc.GetRoleInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetRoleOutput, error)
}

// kmsAPIClient is the subset of KMS operations used by the identity collector.
type kmsAPIClient interface {
	ListKeys(ctx context.Context, params *kmssvc.ListKeysInput, optFns ...func(*kmssvc.Options)) (*kmssvc.ListKeysOutput, error)
	DescribeKey(ctx context.Context, params *kmssvc.DescribeKeyInput, optFns ...func(*kmssvc.Options)) (*kmssvc.DescribeKeyOutput, error)
	GetKeyRotationStatus(ctx context.Context, params *kmssvc.GetKeyRotationStatusInput, optFns ...func(*kmssvc.Options)) (*kmssvc.GetKeyRotationStatusOutput, error)
}

// secretsAPIClient is the subset of Secrets Manager operations used by the
// identity collector. ListSecrets already carries the access and rotation
// timestamps the rules need, so DescribeSecret is unnecessary.
type secretsAPIClient interface {
	ListSecrets(ctx context.Context, params *smsvc.ListSecretsInput, optFns ...func(*smsvc.Options)) (*smsvc.ListSecretsOutput, error)
}

// clientSet holds the initialised service clients for one region.
type clientSet struct {
	iam     iamAPIClient
	kms     kmsAPIClient
	secrets secretsAPIClient
}

// clientFactory creates a clientSet from an aws.Config.
// Swap this in tests to inject mock clients.
type clientFactory func(cfg aws.Config) *clientSet

// newDefaultClients is the production clientFactory.
func newDefaultClients(cfg aws.Config) *clientSet {
	return &clientSet{
		iam:     iamsvc.NewFromConfig(cfg),
		kms:     kmssvc.NewFromConfig(cfg),
		secrets: smsvc.NewFromConfig(cfg),
	}
}
