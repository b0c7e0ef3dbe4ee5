package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opsaudit/opsaudit/internal/models"
)

func testReport() *models.AuditReport {
	return &models.AuditReport{
		ReportID:  "r-123",
		AuditType: "cost",
		Profile:   "prod",
		AccountID: "123456789012",
		Regions:   []string{"us-east-1", "eu-west-1"},
		Summary: models.AuditSummary{
			TotalFindings:                3,
			HighFindings:                 1,
			MediumFindings:               2,
			TotalEstimatedMonthlySavings: 85,
		},
		Findings: []models.Finding{
			{ResourceID: "i-1", Region: "us-east-1", Severity: models.SeverityHigh, EstimatedMonthlySavings: 50, Explanation: "idle"},
			{ResourceID: "vol-1", Region: "us-east-1", Severity: models.SeverityMedium, EstimatedMonthlySavings: 35, Explanation: "unattached"},
			{ResourceID: "lg-1", Region: "eu-west-1", Severity: models.SeverityMedium, Explanation: "no retention"},
		},
	}
}

func TestTopFindingsBySavings(t *testing.T) {
	findings := testReport().Findings

	top := topFindingsBySavings(findings, 5)
	if len(top) != 2 {
		t.Fatalf("got %d findings, want 2 (zero-savings excluded)", len(top))
	}
	if top[0].ResourceID != "i-1" || top[1].ResourceID != "vol-1" {
		t.Errorf("order = %s, %s", top[0].ResourceID, top[1].ResourceID)
	}

	if got := topFindingsBySavings(findings, 1); len(got) != 1 {
		t.Errorf("n=1: got %d findings", len(got))
	}
	if got := topFindingsBySavings(nil, 5); len(got) != 0 {
		t.Errorf("nil input: got %d findings", len(got))
	}

	// Input order stays untouched.
	if findings[0].ResourceID != "i-1" || findings[2].ResourceID != "lg-1" {
		t.Error("input slice was reordered")
	}
}

func TestPrintSummary(t *testing.T) {
	var buf strings.Builder
	printSummary(&buf, testReport())
	out := buf.String()

	for _, want := range []string{
		"Account:  123456789012",
		"Profile:  prod",
		"Regions:  2",
		"Total Findings:        3",
		"Est. Monthly Savings:  $85.00",
		"Severity Breakdown",
		"Top Findings by Savings",
		"i-1",
		"$50.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryNoSavings(t *testing.T) {
	report := testReport()
	for i := range report.Findings {
		report.Findings[i].EstimatedMonthlySavings = 0
	}
	report.Summary.TotalEstimatedMonthlySavings = 0

	var buf strings.Builder
	printSummary(&buf, report)
	out := buf.String()
	if strings.Contains(out, "Top Findings by Savings") {
		t.Error("savings section rendered with no savings")
	}
	if strings.Contains(out, "Est. Monthly Savings") {
		t.Error("savings total rendered with no savings")
	}
}

func TestPrintTable(t *testing.T) {
	var buf strings.Builder
	printTable(&buf, testReport(), auditFlags{allProfiles: false})
	out := buf.String()

	if !strings.Contains(out, "Profile: prod") || !strings.Contains(out, "Findings: 3") {
		t.Errorf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "i-1") || !strings.Contains(out, "SAVINGS/MO") {
		t.Errorf("table body missing:\n%s", out)
	}
	if strings.Contains(out, "PROFILE  ") {
		t.Error("profile column rendered for a single-profile run")
	}
}

func TestWriteJSONReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := writeJSONReport(path, testReport()); err != nil {
		t.Fatalf("writeJSONReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got models.AuditReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal written report: %v", err)
	}
	if got.ReportID != "r-123" || len(got.Findings) != 3 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf strings.Builder
	if err := printJSON(&buf, testReport()); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	var got models.AuditReport
	if err := json.Unmarshal([]byte(buf.String()), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.AccountID != "123456789012" {
		t.Errorf("AccountID = %q", got.AccountID)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	var buf strings.Builder
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "oa") {
		t.Errorf("version output = %q", buf.String())
	}
}

func TestAllRuleIDs(t *testing.T) {
	ids := allRuleIDs()
	if len(ids) != 29 {
		t.Errorf("got %d rule IDs, want 29", len(ids))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Errorf("duplicate rule ID %q across packs", id)
		}
		seen[id] = struct{}{}
	}
}

func TestRootCmdWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"aws", "policy", "doctor", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not wired: %v", name, err)
		}
	}
	for _, domain := range []string{"identity", "storage", "traffic", "cost"} {
		cmd, _, err := root.Find([]string{"aws", "audit", domain})
		if err != nil || cmd.Name() != domain {
			t.Errorf("audit domain %q not wired: %v", domain, err)
		}
	}
}
