package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	smsvc "github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/opsaudit/opsaudit/internal/models"
)

// collectSecrets returns all Secrets Manager secrets in region.
// The ListSecrets response already carries LastAccessedDate, LastRotatedDate,
// and RotationEnabled, so no per-secret describe calls are needed.
func collectSecrets(ctx context.Context, client secretsAPIClient, region string) ([]models.Secret, error) {
	paginator := smsvc.NewListSecretsPaginator(client, &smsvc.ListSecretsInput{})

	var secrets []models.Secret
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list secrets: %w", err)
		}
		for _, s := range page.SecretList {
			secret := models.Secret{
				Name:           aws.ToString(s.Name),
				ARN:            aws.ToString(s.ARN),
				Region:         region,
				LastAccessedAt: s.LastAccessedDate,
				LastRotatedAt:  s.LastRotatedDate,
			}
			if s.CreatedDate != nil {
				secret.CreatedAt = *s.CreatedDate
			}
			if s.RotationEnabled != nil {
				secret.RotationEnabled = *s.RotationEnabled
			}
			secrets = append(secrets, secret)
		}
	}
	return secrets, nil
}
