// Package traffic collects API Gateway, Step Functions, Kinesis, Lambda,
// and ELBv2 data for the traffic audit domain. Every resource is enriched
// with CloudWatch lookback-window metrics through common.FetchMetric;
// collectors gather raw facts only and apply no thresholds.
package traffic

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

// DefaultCollector is the production traffic-domain collector.
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

// Collect gathers the complete traffic snapshot for one profile. All five
// services are regional; regions are collected in parallel and a service
// that fails in one region is skipped there with a log line.
func (c *DefaultCollector) Collect(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
	daysBack int,
) (*models.AccountSnapshot, error) {
	snapshot := &models.TrafficSnapshot{
		CollectedAt:  time.Now().UTC(),
		LookbackDays: daysBack,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRegions)

	for _, region := range regions {
		g.Go(func() error {
			clients := c.factory(provider.ConfigForRegion(profile, region))

			stages, err := collectAPIStages(gctx, clients.apigw, clients.cw, region, daysBack)
			if err != nil {
				slog.Warn("skipping region for API Gateway collection", "region", region, "error", err)
			}
			machines, err := collectStateMachines(gctx, clients.sfn, clients.cw, region, daysBack)
			if err != nil {
				slog.Warn("skipping region for Step Functions collection", "region", region, "error", err)
			}
			streams, err := collectKinesisStreams(gctx, clients.kinesis, clients.cw, region, daysBack)
			if err != nil {
				slog.Warn("skipping region for Kinesis collection", "region", region, "error", err)
			}
			functions, err := collectLambdaFunctions(gctx, clients.lambda, clients.cw, region, daysBack)
			if err != nil {
				slog.Warn("skipping region for Lambda collection", "region", region, "error", err)
			}
			lbs, err := collectLoadBalancers(gctx, clients.elbv2, clients.cw, region, daysBack)
			if err != nil {
				slog.Warn("skipping region for ELB collection", "region", region, "error", err)
			}

			mu.Lock()
			snapshot.Stages = append(snapshot.Stages, stages...)
			snapshot.StateMachines = append(snapshot.StateMachines, machines...)
			snapshot.Streams = append(snapshot.Streams, streams...)
			snapshot.Functions = append(snapshot.Functions, functions...)
			snapshot.LoadBalancers = append(snapshot.LoadBalancers, lbs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AccountSnapshot{Traffic: snapshot}, nil
}
