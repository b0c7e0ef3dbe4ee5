package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

func sampleReport() *models.AuditReport {
	return &models.AuditReport{
		ReportID:    "r-123",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		AuditType:   "cost",
		Profile:     "prod",
		AccountID:   "123456789012",
		Regions:     []string{"us-east-1", "eu-west-1"},
		Summary: models.AuditSummary{
			TotalFindings:                1,
			MediumFindings:               1,
			TotalEstimatedMonthlySavings: 30,
		},
		Findings: []models.Finding{
			{
				ResourceID:              "i-0abc123",
				ResourceType:            models.ResourceEC2Instance,
				Region:                  "us-east-1",
				Severity:                models.SeverityMedium,
				Explanation:             "average CPU over the lookback window was 3.2%",
				Recommendation:          "stop or rightsize the instance",
				EstimatedMonthlySavings: 30,
			},
		},
		Billing: &models.BillingSummary{
			Days: []models.DailyCost{
				{Date: "2026-07-30", AmountUSD: 101.5},
				{Date: "2026-07-31", AmountUSD: 240.75},
			},
		},
	}
}

func TestRenderReport(t *testing.T) {
	var buf strings.Builder
	if err := RenderReport(&buf, sampleReport()); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"COST audit report",
		"Report ID:  r-123",
		"Account:    123456789012",
		"Regions:    us-east-1, eu-west-1",
		"[MEDIUM] i-0abc123 (EC2_INSTANCE, us-east-1)",
		"Recommendation: stop or rightsize the instance",
		"Estimated monthly saving: $30.00",
		"Findings: 1 total (0 critical, 0 high, 1 medium, 0 low)",
		"Estimated monthly savings: $30.00",
		"Latest daily spend (2026-07-31): $240.75",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReportNoFindings(t *testing.T) {
	report := sampleReport()
	report.Findings = nil
	report.Summary = models.AuditSummary{}
	report.Billing = nil

	var buf strings.Builder
	if err := RenderReport(&buf, report); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No findings.") {
		t.Errorf("report missing no-findings marker:\n%s", out)
	}
	if strings.Contains(out, "Latest daily spend") {
		t.Error("spend line rendered without billing data")
	}
}

func TestWriteReportFile(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "audit.txt")
		got, err := WriteReportFile(sampleReport(), path)
		if err != nil {
			t.Fatalf("WriteReportFile: %v", err)
		}
		if got != path {
			t.Errorf("returned path %q, want %q", got, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if !strings.Contains(string(data), "COST audit report") {
			t.Errorf("file content missing header:\n%s", data)
		}
	})

	t.Run("empty path falls back to temp dir", func(t *testing.T) {
		report := sampleReport()
		got, err := WriteReportFile(report, "")
		if err != nil {
			t.Fatalf("WriteReportFile: %v", err)
		}
		t.Cleanup(func() { os.Remove(got) })
		if got != DefaultReportPath(report) {
			t.Errorf("path %q, want %q", got, DefaultReportPath(report))
		}
	})
}

func TestDefaultReportPath(t *testing.T) {
	got := DefaultReportPath(sampleReport())
	if filepath.Base(got) != "opsaudit-cost-r-123.txt" {
		t.Errorf("got %q", got)
	}
}
