package cost

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// collectEC2Instances pages through all running and stopped EC2 instances in
// region. Running instances are enriched with their average CPUUtilization
// over the lookback window; stopped instances carry the stop timestamp
// parsed from the state transition reason.
//
// CloudWatch failures are non-fatal: AvgCPU keeps HasData false, which the
// rule layer treats as "no data available" rather than "truly idle".
func collectEC2Instances(
	ctx context.Context,
	ec2Client ec2APIClient,
	cw common.CloudWatchClient,
	region string,
	daysBack int,
) ([]models.EC2Instance, error) {
	input := &ec2svc.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{"running", "stopped"},
			},
		},
	}

	paginator := ec2svc.NewDescribeInstancesPaginator(ec2Client, input)

	var instances []models.EC2Instance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, toEC2Instance(inst, region))
			}
		}
	}

	// Stopped instances have no active CPU metric; skip them to avoid noise.
	for i := range instances {
		if instances[i].State != "running" {
			continue
		}
		instances[i].AvgCPU = common.FetchMetric(ctx, cw, common.MetricQuery{
			Namespace:  "AWS/EC2",
			MetricName: "CPUUtilization",
			Dimensions: map[string]string{"InstanceId": instances[i].InstanceID},
			Statistic:  cwtypes.StatisticAverage,
			Days:       daysBack,
		})
	}
	return instances, nil
}

// toEC2Instance converts an SDK EC2 instance to the internal model.
func toEC2Instance(inst ec2types.Instance, region string) models.EC2Instance {
	var state string
	if inst.State != nil {
		state = string(inst.State.Name)
	}

	m := models.EC2Instance{
		InstanceID:   aws.ToString(inst.InstanceId),
		Region:       region,
		InstanceType: string(inst.InstanceType),
		State:        state,
	}
	if inst.LaunchTime != nil {
		m.LaunchTime = *inst.LaunchTime
	}
	if state == "stopped" {
		m.StoppedAt = parseStopTime(aws.ToString(inst.StateTransitionReason))
	}
	return m
}

// stopReasonTimestamp matches the timestamp EC2 embeds in stop reasons,
// e.g. "User initiated (2024-01-02 15:04:05 GMT)".
var stopReasonTimestamp = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) GMT\)`)

// parseStopTime extracts the stop timestamp from a state transition reason.
// Nil when the reason carries no parseable timestamp.
func parseStopTime(reason string) *time.Time {
	m := stopReasonTimestamp.FindStringSubmatch(reason)
	if m == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", m[1])
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// collectEBSVolumes returns all EBS volumes in region.
func collectEBSVolumes(ctx context.Context, ec2Client ec2APIClient, region string) ([]models.EBSVolume, error) {
	paginator := ec2svc.NewDescribeVolumesPaginator(ec2Client, &ec2svc.DescribeVolumesInput{})

	var volumes []models.EBSVolume
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe volumes: %w", err)
		}
		for _, v := range page.Volumes {
			volumes = append(volumes, models.EBSVolume{
				VolumeID:   aws.ToString(v.VolumeId),
				Region:     region,
				VolumeType: string(v.VolumeType),
				SizeGB:     aws.ToInt32(v.Size),
				State:      string(v.State),
				Attached:   len(v.Attachments) > 0,
			})
		}
	}
	return volumes, nil
}
