package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

// stampDomain sets the Domain field on every finding in the slice.
// It is called once per run, immediately after rule evaluation, before any
// merge or sort. This is the canonical location for domain tagging.
func stampDomain(findings []models.Finding, domain string) {
	for i := range findings {
		findings[i].Domain = domain
	}
}

// buildReport assembles the final AuditReport from collected data and
// findings. Raw findings are first merged per resource (same
// ResourceID+Region), then filtered through the policy, then sorted:
// CRITICAL → HIGH → MEDIUM → LOW → INFO, ties broken by
// EstimatedMonthlySavings descending.
func (e *DefaultEngine) buildReport(
	profile, accountID string,
	regions []string,
	findings []models.Finding,
	spend *models.SpendSnapshot,
) *models.AuditReport {
	merged := mergeFindings(findings)
	merged = policy.ApplyPolicy(merged, string(e.domain), e.policy)
	sortFindings(merged)

	report := &models.AuditReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		AuditType:   string(e.domain),
		Profile:     profile,
		AccountID:   accountID,
		Regions:     regions,
		Summary:     computeSummary(merged),
		Findings:    merged,
	}
	if spend != nil {
		report.Billing = spend.Billing
	}
	return report
}

// aggregateSpend merges the billing series of multiple profiles into a
// single snapshot. Daily amounts are summed per date and the combined
// series is sorted ascending. Returns nil when no profile produced billing
// data.
func aggregateSpend(spends []*models.SpendSnapshot) *models.SpendSnapshot {
	dayTotals := make(map[string]float64)
	for _, s := range spends {
		if s == nil || s.Billing == nil {
			continue
		}
		for _, d := range s.Billing.Days {
			dayTotals[d.Date] += d.AmountUSD
		}
	}
	if len(dayTotals) == 0 {
		return nil
	}

	dates := make([]string, 0, len(dayTotals))
	for date := range dayTotals {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	billing := &models.BillingSummary{Days: make([]models.DailyCost, 0, len(dates))}
	for _, date := range dates {
		billing.Days = append(billing.Days, models.DailyCost{Date: date, AmountUSD: dayTotals[date]})
	}
	return &models.SpendSnapshot{Billing: billing}
}

// findingGroupKey is the composite key used to group findings by resource.
type findingGroupKey struct {
	resourceID string
	region     string
}

// mergeFindings collapses findings that refer to the same resource
// (same ResourceID + Region) into a single Finding:
//   - Severity: highest (lowest severityRank) across the group
//   - EstimatedMonthlySavings: sum across the group
//   - Metadata["rules"]: []string of every RuleID that fired on this resource
//
// All other fields (ID, RuleID, ResourceType, Explanation, Recommendation,
// DetectedAt, AccountID, Profile, Domain) are taken from the first finding
// in the group. Additional Metadata keys from later findings are merged in
// without overwriting keys already set by earlier findings.
// Insertion order of groups is preserved so sortFindings controls final order.
func mergeFindings(raw []models.Finding) []models.Finding {
	type entry struct {
		f       models.Finding
		ruleIDs []string
	}

	index := make(map[findingGroupKey]int) // key → position in entries
	var order []findingGroupKey
	entries := make([]entry, 0, len(raw))

	for _, f := range raw {
		key := findingGroupKey{resourceID: f.ResourceID, region: f.Region}
		pos, exists := index[key]
		if !exists {
			// First finding for this resource — clone metadata map and use as base.
			meta := make(map[string]any, len(f.Metadata)+1)
			for k, v := range f.Metadata {
				meta[k] = v
			}
			f.Metadata = meta
			entries = append(entries, entry{f: f, ruleIDs: []string{f.RuleID}})
			index[key] = len(entries) - 1
			order = append(order, key)
			continue
		}

		e := &entries[pos]
		e.ruleIDs = append(e.ruleIDs, f.RuleID)

		// Upgrade severity if this finding is more severe.
		if severityRank[f.Severity] < severityRank[e.f.Severity] {
			e.f.Severity = f.Severity
		}

		// Accumulate estimated savings.
		e.f.EstimatedMonthlySavings += f.EstimatedMonthlySavings

		// Merge any new metadata keys from this finding; do not overwrite existing.
		for k, v := range f.Metadata {
			if _, alreadySet := e.f.Metadata[k]; !alreadySet {
				e.f.Metadata[k] = v
			}
		}
	}

	// Stamp Metadata["rules"] and collect results in group-insertion order.
	result := make([]models.Finding, 0, len(entries))
	for _, key := range order {
		e := &entries[index[key]]
		e.f.Metadata["rules"] = e.ruleIDs
		result = append(result, e.f)
	}
	return result
}

// severityRank maps Severity values to sort keys (lower = higher priority).
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
	models.SeverityLow:      3,
	models.SeverityInfo:     4,
}

// sortFindings sorts findings in-place: severity descending (CRITICAL first),
// then EstimatedMonthlySavings descending within the same severity.
func sortFindings(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri := severityRank[findings[i].Severity]
		rj := severityRank[findings[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return findings[i].EstimatedMonthlySavings > findings[j].EstimatedMonthlySavings
	})
}

// computeSummary aggregates finding counts and total estimated savings
// across all severity levels.
func computeSummary(findings []models.Finding) models.AuditSummary {
	var s models.AuditSummary
	s.TotalFindings = len(findings)
	for _, f := range findings {
		s.TotalEstimatedMonthlySavings += f.EstimatedMonthlySavings
		switch f.Severity {
		case models.SeverityCritical:
			s.CriticalFindings++
		case models.SeverityHigh:
			s.HighFindings++
		case models.SeverityMedium:
			s.MediumFindings++
		case models.SeverityLow:
			s.LowFindings++
		}
	}
	return s
}
