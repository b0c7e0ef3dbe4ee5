package cost

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cesvc "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/opsaudit/opsaudit/internal/models"
)

// collectDailyCosts returns the account's unblended daily spend for the last
// daysBack days, oldest first. The series feeds the billing-spike rule,
// which compares the newest day against the trailing average.
func collectDailyCosts(ctx context.Context, ce ceAPIClient, daysBack int) (*models.BillingSummary, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	out, err := ce.GetCostAndUsage(ctx, &cesvc.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
	})
	if err != nil {
		return nil, fmt.Errorf("get cost and usage: %w", err)
	}

	summary := &models.BillingSummary{}
	for _, period := range out.ResultsByTime {
		cost, ok := period.Total["UnblendedCost"]
		if !ok || cost.Amount == nil {
			continue
		}
		amount, err := strconv.ParseFloat(*cost.Amount, 64)
		if err != nil {
			continue
		}
		day := models.DailyCost{AmountUSD: amount}
		if period.TimePeriod != nil {
			day.Date = aws.ToString(period.TimePeriod.Start)
		}
		summary.Days = append(summary.Days, day)
	}
	return summary, nil
}
