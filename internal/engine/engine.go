package engine

import (
	"context"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// AuditType identifies the category of audit to run.
type AuditType string

const (
	AuditTypeIdentity AuditType = "identity"
	AuditTypeStorage  AuditType = "storage"
	AuditTypeTraffic  AuditType = "traffic"
	AuditTypeCost     AuditType = "cost"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON    ReportFormat = "json"
	ReportFormatTable   ReportFormat = "table"
	ReportFormatSummary ReportFormat = "summary"
)

// AuditOptions configures a single audit run.
// It is the sole input to Engine.RunAudit.
type AuditOptions struct {
	// AuditType selects the audit domain (e.g. "identity").
	AuditType AuditType

	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// AllProfiles, when true, runs the audit across every configured AWS profile.
	AllProfiles bool

	// Regions is an explicit list of AWS regions to audit.
	// When empty the engine discovers and iterates all active regions.
	Regions []string

	// ReportFormat controls how the CLI renders the returned report.
	ReportFormat ReportFormat

	// DaysBack is the lookback window in days for CloudWatch and Cost
	// Explorer queries. Defaults to 14 when zero, or 30 for cost audits.
	DaysBack int
}

// Collector gathers one domain's account snapshot across the given regions.
// All four AWS domain collectors implement this interface.
type Collector interface {
	Collect(
		ctx context.Context,
		profile *common.ProfileConfig,
		provider common.AWSClientProvider,
		regions []string,
		daysBack int,
	) (*models.AccountSnapshot, error)
}

// Engine is the central orchestration interface.
// It coordinates provider collection, rule evaluation, and report assembly,
// returning a fully populated AuditReport.
//
// Engine must not call AWS SDK clients directly; it delegates to the
// provider and rule interfaces.
type Engine interface {
	RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error)
}
