package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsaudit/opsaudit/internal/alert"
	"github.com/opsaudit/opsaudit/internal/config"
	"github.com/opsaudit/opsaudit/internal/engine"
	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/output"
	"github.com/opsaudit/opsaudit/internal/policy"
	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
	awscost "github.com/opsaudit/opsaudit/internal/providers/aws/cost"
	awsidentity "github.com/opsaudit/opsaudit/internal/providers/aws/identity"
	awsstorage "github.com/opsaudit/opsaudit/internal/providers/aws/storage"
	awstraffic "github.com/opsaudit/opsaudit/internal/providers/aws/traffic"
	costpack "github.com/opsaudit/opsaudit/internal/rulepacks/cost"
	identitypack "github.com/opsaudit/opsaudit/internal/rulepacks/identity"
	storagepack "github.com/opsaudit/opsaudit/internal/rulepacks/storage"
	trafficpack "github.com/opsaudit/opsaudit/internal/rulepacks/traffic"
	"github.com/opsaudit/opsaudit/internal/rules"
	"github.com/opsaudit/opsaudit/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oa",
		Short: "opsaudit — AWS account auditing across identity, storage, traffic, and cost",
	}
	root.AddCommand(newAWSCmd())
	root.AddCommand(newPolicyCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newAWSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aws",
		Short: "AWS provider commands",
	}
	cmd.AddCommand(newAuditCmd())
	return cmd
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run an audit against an AWS account",
	}
	cmd.AddCommand(newDomainCmd(
		"identity", "Audit IAM users, keys, policies, roles, KMS keys, and secrets",
		engine.AuditTypeIdentity,
		func() engine.Collector { return awsidentity.NewCollector() },
		identitypack.New,
	))
	cmd.AddCommand(newDomainCmd(
		"storage", "Audit S3 buckets and ECR repositories",
		engine.AuditTypeStorage,
		func() engine.Collector { return awsstorage.NewCollector() },
		storagepack.New,
	))
	cmd.AddCommand(newDomainCmd(
		"traffic", "Audit API Gateway, Step Functions, Kinesis, Lambda, and load balancers",
		engine.AuditTypeTraffic,
		func() engine.Collector { return awstraffic.NewCollector() },
		trafficpack.New,
	))
	cmd.AddCommand(newDomainCmd(
		"cost", "Audit spend, utilisation, and retention waste",
		engine.AuditTypeCost,
		func() engine.Collector { return awscost.NewCollector() },
		costpack.New,
	))
	return cmd
}

// auditFlags holds the flag values shared by every domain audit command.
type auditFlags struct {
	profile     string
	allProfiles bool
	regions     []string
	days        int
	reportFmt   string
	summary     bool
	output      string
	reportFile  string
	writeReport bool
	policyPath  string
	notify      bool
	colored     bool
}

// newDomainCmd builds one `oa aws audit <domain>` subcommand. All four
// domains share flag handling, policy resolution, rendering, alerting, and
// enforcement; only the collector and rule pack differ.
func newDomainCmd(
	use, short string,
	domain engine.AuditType,
	newCollector func() engine.Collector,
	newPack func() []rules.Rule,
) *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDomainAudit(cmd, domain, newCollector, newPack, flags)
		},
	}

	cmd.Flags().StringVar(&flags.profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().BoolVar(&flags.allProfiles, "all-profiles", false, "Audit all configured AWS profiles")
	cmd.Flags().StringSliceVar(&flags.regions, "region", nil, "AWS region(s) to audit (default: all active regions)")
	cmd.Flags().IntVar(&flags.days, "days", 0, "Lookback window in days for metric queries (default: 14, cost: 30)")
	cmd.Flags().StringVar(&flags.reportFmt, "report", "table", "Output format: json or table")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "Print compact summary: totals, severity breakdown, top-5 findings by savings")
	cmd.Flags().StringVar(&flags.output, "output", "", "Write full JSON report to this file path (in addition to stdout output)")
	cmd.Flags().StringVar(&flags.reportFile, "report-file", "", "Write plain-text report to this file path (default location when --write-report is set)")
	cmd.Flags().BoolVar(&flags.writeReport, "write-report", false, "Write a plain-text report file to the configured report directory")
	cmd.Flags().StringVar(&flags.policyPath, "policy", "", "Path to a policy YAML file")
	cmd.Flags().BoolVar(&flags.notify, "notify", false, "Send the report summary to the configured alert channels")
	cmd.Flags().BoolVar(&flags.colored, "colored", false, "Colorize severity in table output")

	return cmd
}

func runDomainAudit(
	cmd *cobra.Command,
	domain engine.AuditType,
	newCollector func() engine.Collector,
	newPack func() []rules.Rule,
	flags auditFlags,
) error {
	appCfg, err := config.NewDefaultLoader("").Load()
	if err != nil {
		return err
	}
	if flags.profile == "" {
		flags.profile = appCfg.AWS.DefaultProfile
	}

	policyCfg, err := resolvePolicy(flags.policyPath)
	if err != nil {
		return err
	}

	registry := rules.NewDefaultRuleRegistry()
	for _, r := range newPack() {
		registry.Register(r)
	}

	eng := engine.NewDefaultEngine(
		domain,
		common.NewDefaultAWSClientProvider(),
		newCollector(),
		registry,
		policyCfg,
	)

	report, err := eng.RunAudit(cmd.Context(), engine.AuditOptions{
		AuditType:    domain,
		Profile:      flags.profile,
		AllProfiles:  flags.allProfiles,
		Regions:      flags.regions,
		DaysBack:     flags.days,
		ReportFormat: engine.ReportFormat(flags.reportFmt),
	})
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if flags.output != "" {
		if err := writeJSONReport(flags.output, report); err != nil {
			return err
		}
	}
	if flags.writeReport || flags.reportFile != "" {
		path := flags.reportFile
		if path == "" && appCfg.Report.Dir != "" {
			name := fmt.Sprintf("opsaudit-%s-%s.txt", report.AuditType, report.ReportID)
			path = filepath.Join(appCfg.Report.Dir, name)
		}
		written, err := output.WriteReportFile(report, path)
		if err != nil {
			return err
		}
		slog.Info("report written", "path", written)
	}

	switch {
	case flags.summary:
		printSummary(cmd.OutOrStdout(), report)
	case flags.reportFmt == "json":
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	default:
		printTable(cmd.OutOrStdout(), report, flags)
	}

	if flags.notify {
		alert.NotifyAll(cmd.Context(), buildNotifiers(appCfg), report)
	}

	if policy.ShouldFail(string(domain), report.Findings, policyCfg) {
		return fmt.Errorf("policy enforcement: findings at or above the configured fail severity")
	}
	return nil
}

// resolvePolicy loads the policy file (when given) and folds environment
// variable thresholds into it. Env vars fill gaps; the file always wins.
func resolvePolicy(path string) (*policy.PolicyConfig, error) {
	var cfg *policy.PolicyConfig
	if path != "" {
		loaded, err := policy.LoadPolicy(path)
		if err != nil {
			return nil, fmt.Errorf("load policy: %w", err)
		}
		cfg = loaded
	}
	envDefaults, err := policy.LoadEnvDefaults()
	if err != nil {
		return nil, fmt.Errorf("parse threshold environment variables: %w", err)
	}
	return policy.MergeEnvDefaults(cfg, envDefaults), nil
}

// buildNotifiers returns the alert channels the config enables.
func buildNotifiers(cfg *config.Config) []alert.Notifier {
	var notifiers []alert.Notifier
	if cfg.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlackNotifier(cfg.Slack.WebhookURL))
	}
	if cfg.Email.Host != "" && len(cfg.Email.To) > 0 {
		notifiers = append(notifiers, alert.NewEmailNotifier(alert.EmailConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
		}))
	}
	return notifiers
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// printJSON writes the report as indented JSON to w.
func printJSON(w io.Writer, report *models.AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// writeJSONReport serialises report as indented JSON and writes it to path,
// creating or overwriting the file. It does not affect stdout output.
func writeJSONReport(path string, report *models.AuditReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return nil
}

// printSummary renders a compact summary view to w:
//   - Account / profile / region header
//   - Total findings and total estimated monthly savings
//   - Per-severity finding counts
//   - Top 5 findings ranked by EstimatedMonthlySavings
//
// It reuses the already-computed AuditReport; no engine logic is duplicated.
func printSummary(w io.Writer, report *models.AuditReport) {
	s := report.Summary

	fmt.Fprintf(w, "Account:  %s\n", report.AccountID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	fmt.Fprintf(w, "Regions:  %d\n", len(report.Regions))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Findings:        %d\n", s.TotalFindings)
	if s.TotalEstimatedMonthlySavings > 0 {
		fmt.Fprintf(w, "Est. Monthly Savings:  $%.2f\n", s.TotalEstimatedMonthlySavings)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Severity Breakdown")
	fmt.Fprintf(w, "  %-10s  %d\n", "CRITICAL", s.CriticalFindings)
	fmt.Fprintf(w, "  %-10s  %d\n", "HIGH", s.HighFindings)
	fmt.Fprintf(w, "  %-10s  %d\n", "MEDIUM", s.MediumFindings)
	fmt.Fprintf(w, "  %-10s  %d\n", "LOW", s.LowFindings)

	top := topFindingsBySavings(report.Findings, 5)
	if len(top) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top Findings by Savings")
	fmt.Fprintf(w, "  %-42s  %-15s  %-10s  %s\n", "RESOURCE ID", "REGION", "SEVERITY", "SAVINGS/MO")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 82))
	for _, f := range top {
		fmt.Fprintf(w, "  %-42s  %-15s  %-10s  $%.2f\n",
			f.ResourceID, f.Region, string(f.Severity), f.EstimatedMonthlySavings)
	}
}

// topFindingsBySavings returns up to n findings from the provided slice,
// ordered by EstimatedMonthlySavings descending.
// The original slice is not modified.
func topFindingsBySavings(findings []models.Finding, n int) []models.Finding {
	withSavings := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		if f.EstimatedMonthlySavings > 0 {
			withSavings = append(withSavings, f)
		}
	}
	sort.Slice(withSavings, func(i, j int) bool {
		return withSavings[i].EstimatedMonthlySavings > withSavings[j].EstimatedMonthlySavings
	})
	if n > len(withSavings) {
		n = len(withSavings)
	}
	return withSavings[:n]
}

// printTable renders a one-line report header followed by the findings table.
func printTable(w io.Writer, report *models.AuditReport, flags auditFlags) {
	s := report.Summary
	fmt.Fprintf(w,
		"Profile: %-20s  Account: %-14s  Regions: %d  Findings: %d\n",
		report.Profile,
		report.AccountID,
		len(report.Regions),
		s.TotalFindings,
	)
	fmt.Fprintln(w)
	output.RenderTable(w, report.Findings, output.TableOptions{
		Colored:        flags.colored,
		IncludeSavings: true,
		IncludeProfile: flags.allProfiles,
	})
}
