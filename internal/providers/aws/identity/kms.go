package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	kmssvc "github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/opsaudit/opsaudit/internal/models"
)

// collectKMSKeys returns all customer-managed keys in region together with
// their rotation status. AWS-managed keys are excluded: their rotation is
// handled by AWS and is not actionable.
//
// Rotation status is only queryable for symmetric keys; asymmetric keys are
// reported with RotationEnabled false and Symmetric false so the rules can
// skip them.
func collectKMSKeys(ctx context.Context, client kmsAPIClient, region string) ([]models.KMSKey, error) {
	paginator := kmssvc.NewListKeysPaginator(client, &kmssvc.ListKeysInput{})

	var keys []models.KMSKey
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list KMS keys: %w", err)
		}
		for _, entry := range page.Keys {
			keyID := aws.ToString(entry.KeyId)
			desc, err := client.DescribeKey(ctx, &kmssvc.DescribeKeyInput{
				KeyId: aws.String(keyID),
			})
			if err != nil || desc.KeyMetadata == nil {
				continue
			}
			md := desc.KeyMetadata
			if md.KeyManager != kmstypes.KeyManagerTypeCustomer {
				continue
			}

			key := models.KMSKey{
				KeyID:       keyID,
				ARN:         aws.ToString(md.Arn),
				Region:      region,
				Description: aws.ToString(md.Description),
				State:       string(md.KeyState),
				Symmetric:   md.KeySpec == kmstypes.KeySpecSymmetricDefault,
			}
			if key.Symmetric {
				key.RotationEnabled = keyRotationEnabled(ctx, client, keyID)
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// keyRotationEnabled returns the rotation status for a symmetric key.
// Errors are treated as "rotation off" (conservative).
func keyRotationEnabled(ctx context.Context, client kmsAPIClient, keyID string) bool {
	out, err := client.GetKeyRotationStatus(ctx, &kmssvc.GetKeyRotationStatusInput{
		KeyId: aws.String(keyID),
	})
	if err != nil {
		return false
	}
	return out.KeyRotationEnabled
}
