package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
	"github.com/opsaudit/opsaudit/internal/rules"
)

// DefaultEngine is the production implementation of Engine. One engine
// instance serves exactly one audit domain: the collector gathers that
// domain's snapshot and the registry holds that domain's rule pack.
type DefaultEngine struct {
	domain    AuditType
	provider  common.AWSClientProvider
	collector Collector
	registry  rules.RuleRegistry
	policy    *policy.PolicyConfig
}

// NewDefaultEngine constructs a DefaultEngine wired to the supplied
// provider, domain collector, and rule registry.
func NewDefaultEngine(
	domain AuditType,
	provider common.AWSClientProvider,
	collector Collector,
	registry rules.RuleRegistry,
	policyCfg *policy.PolicyConfig,
) *DefaultEngine {
	return &DefaultEngine{
		domain:    domain,
		provider:  provider,
		collector: collector,
		registry:  registry,
		policy:    policyCfg,
	}
}

// RunAudit implements Engine. It loads the requested AWS profile(s),
// discovers regions if not explicitly provided, collects the domain
// snapshot, evaluates all registered rules, and returns a fully populated
// AuditReport.
func (e *DefaultEngine) RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error) {
	if opts.AuditType != e.domain {
		return nil, fmt.Errorf("engine serves audit type %q, got %q", e.domain, opts.AuditType)
	}

	daysBack := opts.DaysBack
	if daysBack <= 0 {
		daysBack = 14
		if e.domain == AuditTypeCost {
			daysBack = 30
		}
	}

	if opts.AllProfiles {
		return e.runAllProfiles(ctx, opts, daysBack)
	}
	return e.runSingleProfile(ctx, opts, daysBack)
}

// runSingleProfile executes the audit for one AWS profile and returns the
// resulting report.
func (e *DefaultEngine) runSingleProfile(
	ctx context.Context,
	opts AuditOptions,
	daysBack int,
) (*models.AuditReport, error) {
	profile, err := e.provider.LoadProfile(ctx, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}

	regions, err := e.resolveRegions(ctx, profile, opts.Regions)
	if err != nil {
		return nil, fmt.Errorf("resolve regions for profile %q: %w", profile.ProfileName, err)
	}

	snapshot, err := e.collector.Collect(ctx, profile, e.provider, regions, daysBack)
	if err != nil {
		return nil, fmt.Errorf("collect %s data for profile %q: %w", e.domain, profile.ProfileName, err)
	}

	findings := e.evaluate(snapshot, profile.AccountID, profile.ProfileName)
	return e.buildReport(profile.ProfileName, profile.AccountID, regions, findings, snapshot.Spend), nil
}

// maxConcurrentProfiles caps the number of profiles audited in parallel.
// Keeps outbound AWS API concurrency predictable when many profiles are
// configured.
const maxConcurrentProfiles = 3

// runAllProfiles loads every configured AWS profile, audits each one in
// parallel (max maxConcurrentProfiles at a time), and merges all findings
// into a single report. The report-level Profile field is set to "multi";
// each individual Finding carries its own Profile and AccountID.
//
// A profile that fails to collect is logged and skipped so one broken
// account does not abort a fleet-wide audit. The run fails only when every
// profile fails.
func (e *DefaultEngine) runAllProfiles(
	ctx context.Context,
	opts AuditOptions,
	daysBack int,
) (*models.AuditReport, error) {
	profiles, err := e.provider.LoadAllProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no AWS profiles found")
	}

	var (
		mu          sync.Mutex
		allFindings []models.Finding
		allRegions  []string
		seenRegions = make(map[string]struct{})
		spends      []*models.SpendSnapshot
		succeeded   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProfiles)

	for _, profile := range profiles {
		g.Go(func() error {
			regions, err := e.resolveRegions(gctx, profile, opts.Regions)
			if err != nil {
				slog.Warn("skipping profile: region discovery failed",
					"profile", profile.ProfileName, "error", err)
				return nil
			}

			snapshot, err := e.collector.Collect(gctx, profile, e.provider, regions, daysBack)
			if err != nil {
				slog.Warn("skipping profile: collection failed",
					"profile", profile.ProfileName, "error", err)
				return nil
			}

			findings := e.evaluate(snapshot, profile.AccountID, profile.ProfileName)

			mu.Lock()
			succeeded++
			allFindings = append(allFindings, findings...)
			for _, r := range regions {
				if _, seen := seenRegions[r]; !seen {
					seenRegions[r] = struct{}{}
					allRegions = append(allRegions, r)
				}
			}
			if snapshot.Spend != nil {
				spends = append(spends, snapshot.Spend)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("all %d profiles failed to collect", len(profiles))
	}

	return e.buildReport("multi", "", allRegions, allFindings, aggregateSpend(spends)), nil
}

// resolveRegions returns the explicit region list when provided, otherwise
// calls GetActiveRegions to discover opted-in regions for the profile.
func (e *DefaultEngine) resolveRegions(
	ctx context.Context,
	profile *common.ProfileConfig,
	explicit []string,
) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	return e.provider.GetActiveRegions(ctx, profile)
}

// evaluate applies every registered rule to the collected snapshot and
// returns the findings slice with Domain stamped.
func (e *DefaultEngine) evaluate(snapshot *models.AccountSnapshot, accountID, profile string) []models.Finding {
	rctx := rules.RuleContext{
		AccountID: accountID,
		Profile:   profile,
		Snapshot:  snapshot,
		Policy:    e.policy,
	}
	findings := e.registry.EvaluateAll(rctx)
	stampDomain(findings, string(e.domain))
	return findings
}
