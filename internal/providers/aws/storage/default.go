// Package storage collects S3 and ECR data for the storage audit domain.
// Collectors gather raw facts only; all thresholds live in the rule layer.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// maxConcurrentRegions caps how many regions are collected in parallel.
const maxConcurrentRegions = 5

// DefaultCollector is the production storage-domain collector.
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

// Collect gathers the complete storage snapshot for one profile.
// S3 bucket listing is account-global and collected once from the home
// region; ECR repositories are collected per region in parallel, skipping
// regions that fail.
func (c *DefaultCollector) Collect(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
	daysBack int,
) (*models.AccountSnapshot, error) {
	home := c.factory(profile.Config)

	buckets, err := collectS3Buckets(ctx, home.s3)
	if err != nil {
		return nil, fmt.Errorf("collect S3 buckets: %w", err)
	}

	snapshot := &models.StorageSnapshot{
		CollectedAt: time.Now().UTC(),
		Buckets:     buckets,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRegions)

	for _, region := range regions {
		g.Go(func() error {
			clients := c.factory(provider.ConfigForRegion(profile, region))
			repos, err := collectECRRepositories(gctx, clients.ecr, region)
			if err != nil {
				slog.Warn("skipping region for ECR collection", "region", region, "error", err)
				return nil
			}
			mu.Lock()
			snapshot.Repositories = append(snapshot.Repositories, repos...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AccountSnapshot{Storage: snapshot}, nil
}
