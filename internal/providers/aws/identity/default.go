// Package identity collects IAM, KMS, and Secrets Manager data for the
// identity audit domain. Collectors gather raw facts only; all thresholds
// live in the rule layer.
package identity

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

// DefaultCollector is the production identity-domain collector.
//
// Inject a custom clientFactory via NewCollectorWithFactory to replace real
// SDK clients with mocks in unit tests.
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

// Collect gathers the complete identity snapshot for one profile.
//
// IAM is a global service and is collected once from the profile's home
// region; KMS keys and secrets are collected per region in parallel.
// Regions that fail are skipped with a log line so one unreachable region
// does not abort the audit; the IAM listing itself failing is fatal.
func (c *DefaultCollector) Collect(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
	daysBack int,
) (*models.AccountSnapshot, error) {
	home := c.factory(profile.Config)

	users, err := collectIAMUsers(ctx, home.iam)
	if err != nil {
		return nil, fmt.Errorf("collect IAM users: %w", err)
	}
	policies, err := collectPolicies(ctx, home.iam)
	if err != nil {
		return nil, fmt.Errorf("collect IAM policies: %w", err)
	}
	roles, err := collectRoles(ctx, home.iam)
	if err != nil {
		return nil, fmt.Errorf("collect IAM roles: %w", err)
	}

	snapshot := &models.IdentitySnapshot{
		CollectedAt: time.Now().UTC(),
		Users:       users,
		AccessKeys:  collectAccessKeys(ctx, home.iam, users),
		Policies:    policies,
		Roles:       roles,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRegions)

	for _, region := range regions {
		g.Go(func() error {
			clients := c.factory(provider.ConfigForRegion(profile, region))

			keys, err := collectKMSKeys(gctx, clients.kms, region)
			if err != nil {
				slog.Warn("skipping region for KMS collection", "region", region, "error", err)
				keys = nil
			}
			secrets, err := collectSecrets(gctx, clients.secrets, region)
			if err != nil {
				slog.Warn("skipping region for secrets collection", "region", region, "error", err)
				secrets = nil
			}

			mu.Lock()
			snapshot.KMSKeys = append(snapshot.KMSKeys, keys...)
			snapshot.Secrets = append(snapshot.Secrets, secrets...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AccountSnapshot{Identity: snapshot}, nil
}
