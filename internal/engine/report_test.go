package engine

import (
	"reflect"
	"testing"

	"github.com/opsaudit/opsaudit/internal/models"
)

func TestStampDomain(t *testing.T) {
	findings := []models.Finding{{ID: "a"}, {ID: "b", Domain: "old"}}
	stampDomain(findings, "storage")
	for _, f := range findings {
		if f.Domain != "storage" {
			t.Errorf("finding %s domain = %q", f.ID, f.Domain)
		}
	}
}

func TestMergeFindings(t *testing.T) {
	raw := []models.Finding{
		{
			ID: "RULE_A-i-1", RuleID: "RULE_A", ResourceID: "i-1", Region: "us-east-1",
			Severity: models.SeverityLow, EstimatedMonthlySavings: 10,
			Metadata: map[string]any{"cpu": 3.2},
		},
		{
			ID: "RULE_B-i-1", RuleID: "RULE_B", ResourceID: "i-1", Region: "us-east-1",
			Severity: models.SeverityHigh, EstimatedMonthlySavings: 5,
			Metadata: map[string]any{"cpu": 99.0, "stopped_days": 40},
		},
		{
			ID: "RULE_A-i-1-eu", RuleID: "RULE_A", ResourceID: "i-1", Region: "eu-west-1",
			Severity: models.SeverityLow,
		},
	}

	merged := mergeFindings(raw)
	if len(merged) != 2 {
		t.Fatalf("got %d findings, want 2", len(merged))
	}

	// Same resource in a different region stays separate.
	if merged[1].Region != "eu-west-1" {
		t.Errorf("second group region = %q", merged[1].Region)
	}

	g := merged[0]
	if g.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want upgraded to HIGH", g.Severity)
	}
	if g.EstimatedMonthlySavings != 15 {
		t.Errorf("savings = %v, want 15", g.EstimatedMonthlySavings)
	}
	if got, ok := g.Metadata["rules"].([]string); !ok || !reflect.DeepEqual(got, []string{"RULE_A", "RULE_B"}) {
		t.Errorf("rules metadata = %v", g.Metadata["rules"])
	}
	// First finding's metadata wins on key conflicts; new keys merge in.
	if g.Metadata["cpu"] != 3.2 {
		t.Errorf("cpu metadata = %v, want the first finding's value", g.Metadata["cpu"])
	}
	if g.Metadata["stopped_days"] != 40 {
		t.Errorf("stopped_days metadata = %v", g.Metadata["stopped_days"])
	}
}

func TestMergeFindingsDoesNotMutateInputMetadata(t *testing.T) {
	raw := []models.Finding{
		{RuleID: "RULE_A", ResourceID: "i-1", Region: "us-east-1", Metadata: map[string]any{"k": 1}},
	}
	mergeFindings(raw)
	if _, polluted := raw[0].Metadata["rules"]; polluted {
		t.Error("input metadata map was mutated")
	}
}

func TestSortFindings(t *testing.T) {
	findings := []models.Finding{
		{ID: "low", Severity: models.SeverityLow},
		{ID: "crit", Severity: models.SeverityCritical},
		{ID: "med-small", Severity: models.SeverityMedium, EstimatedMonthlySavings: 5},
		{ID: "med-big", Severity: models.SeverityMedium, EstimatedMonthlySavings: 50},
		{ID: "info", Severity: models.SeverityInfo},
	}
	sortFindings(findings)

	var got []string
	for _, f := range findings {
		got = append(got, f.ID)
	}
	want := []string{"crit", "med-big", "med-small", "low", "info"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestComputeSummary(t *testing.T) {
	findings := []models.Finding{
		{Severity: models.SeverityCritical, EstimatedMonthlySavings: 100},
		{Severity: models.SeverityHigh},
		{Severity: models.SeverityMedium, EstimatedMonthlySavings: 25},
		{Severity: models.SeverityMedium},
		{Severity: models.SeverityLow},
	}
	s := computeSummary(findings)

	if s.TotalFindings != 5 {
		t.Errorf("TotalFindings = %d", s.TotalFindings)
	}
	if s.CriticalFindings != 1 || s.HighFindings != 1 || s.MediumFindings != 2 || s.LowFindings != 1 {
		t.Errorf("summary counts = %+v", s)
	}
	if s.TotalEstimatedMonthlySavings != 125 {
		t.Errorf("TotalEstimatedMonthlySavings = %v", s.TotalEstimatedMonthlySavings)
	}
}

func TestAggregateSpend(t *testing.T) {
	t.Run("sums per date and sorts", func(t *testing.T) {
		spends := []*models.SpendSnapshot{
			{Billing: &models.BillingSummary{Days: []models.DailyCost{
				{Date: "2026-08-02", AmountUSD: 10},
				{Date: "2026-08-01", AmountUSD: 5},
			}}},
			{Billing: &models.BillingSummary{Days: []models.DailyCost{
				{Date: "2026-08-02", AmountUSD: 7},
			}}},
			nil,
			{Billing: nil},
		}

		got := aggregateSpend(spends)
		if got == nil || got.Billing == nil {
			t.Fatal("expected an aggregated snapshot")
		}
		want := []models.DailyCost{
			{Date: "2026-08-01", AmountUSD: 5},
			{Date: "2026-08-02", AmountUSD: 17},
		}
		if !reflect.DeepEqual(got.Billing.Days, want) {
			t.Errorf("days = %v, want %v", got.Billing.Days, want)
		}
	})

	t.Run("no billing data returns nil", func(t *testing.T) {
		if got := aggregateSpend([]*models.SpendSnapshot{nil, {Billing: nil}}); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})
}
