// Package cost collects Cost Explorer, EC2, EBS, RDS, and CloudWatch Logs
// data for the cost audit domain. Collectors gather raw facts only; all
// thresholds live in the rule layer.
package cost

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// maxConcurrentRegions caps how many regions are collected in parallel.
const maxConcurrentRegions = 5

// DefaultCollector is the production cost-domain collector.
type DefaultCollector struct {
	factory clientFactory
}

// NewCollector returns a collector backed by the real AWS SDK.
func NewCollector() *DefaultCollector {
	return &DefaultCollector{factory: newDefaultClients}
}

// NewCollectorWithFactory returns a collector that uses f to create its
// service clients. Pass a mock factory in tests.
func NewCollectorWithFactory(f clientFactory) *DefaultCollector {
	return &DefaultCollector{factory: f}
}

// Collect gathers the complete cost snapshot for one profile.
//
// The Cost Explorer daily spend series is account-level and fetched once;
// its failure is non-fatal and leaves Billing nil (the billing-spike rule
// then has nothing to evaluate). EC2, EBS, RDS, and log groups are
// collected per region in parallel, skipping regions that fail.
func (c *DefaultCollector) Collect(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
	daysBack int,
) (*models.AccountSnapshot, error) {
	home := c.factory(profile.Config)

	snapshot := &models.SpendSnapshot{
		CollectedAt:  time.Now().UTC(),
		LookbackDays: daysBack,
	}

	billing, err := collectDailyCosts(ctx, home.ce, daysBack)
	if err != nil {
		slog.Warn("cost explorer unavailable, proceeding without billing data", "error", err)
	} else {
		snapshot.Billing = billing
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRegions)

	for _, region := range regions {
		g.Go(func() error {
			clients := c.factory(provider.ConfigForRegion(profile, region))

			instances, err := collectEC2Instances(gctx, clients.ec2, clients.cw, region, daysBack)
			if err != nil {
				slog.Warn("skipping region for EC2 collection", "region", region, "error", err)
			}
			volumes, err := collectEBSVolumes(gctx, clients.ec2, region)
			if err != nil {
				slog.Warn("skipping region for EBS collection", "region", region, "error", err)
			}
			dbs, err := collectRDSInstances(gctx, clients.rds, clients.cw, region, daysBack)
			if err != nil {
				slog.Warn("skipping region for RDS collection", "region", region, "error", err)
			}
			groups, err := collectLogGroups(gctx, clients.logs, region)
			if err != nil {
				slog.Warn("skipping region for log group collection", "region", region, "error", err)
			}

			mu.Lock()
			snapshot.Instances = append(snapshot.Instances, instances...)
			snapshot.Volumes = append(snapshot.Volumes, volumes...)
			snapshot.DBInstances = append(snapshot.DBInstances, dbs...)
			snapshot.LogGroups = append(snapshot.LogGroups, groups...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AccountSnapshot{Spend: snapshot}, nil
}
