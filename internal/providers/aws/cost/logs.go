package cost

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	logssvc "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/opsaudit/opsaudit/internal/models"
)

// collectLogGroups returns all CloudWatch log groups in region with their
// retention setting and stored byte count. A nil RetentionDays means the
// group never expires.
func collectLogGroups(ctx context.Context, logs logsAPIClient, region string) ([]models.LogGroup, error) {
	paginator := logssvc.NewDescribeLogGroupsPaginator(logs, &logssvc.DescribeLogGroupsInput{})

	var groups []models.LogGroup
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe log groups: %w", err)
		}
		for _, g := range page.LogGroups {
			groups = append(groups, models.LogGroup{
				Name:          aws.ToString(g.LogGroupName),
				Region:        region,
				RetentionDays: g.RetentionInDays,
				StoredBytes:   aws.ToInt64(g.StoredBytes),
			})
		}
	}
	return groups, nil
}
