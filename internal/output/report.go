package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/opsaudit/opsaudit/internal/models"
)

// DefaultReportPath returns the path a report file will be written to when
// the caller does not supply one: <tmpdir>/opsaudit-<type>-<report id>.txt.
func DefaultReportPath(report *models.AuditReport) string {
	name := fmt.Sprintf("opsaudit-%s-%s.txt", report.AuditType, report.ReportID)
	return filepath.Join(os.TempDir(), name)
}

// WriteReportFile renders the report as plain text and writes it to path,
// creating parent directories as needed. Returns the path written.
func WriteReportFile(report *models.AuditReport, path string) (string, error) {
	if path == "" {
		path = DefaultReportPath(report)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := RenderReport(f, report); err != nil {
		return "", err
	}
	return path, nil
}

// RenderReport writes the plain-text representation of the report to w:
// a header block, one line per finding, and the summary counts.
func RenderReport(w io.Writer, report *models.AuditReport) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s audit report\n", strings.ToUpper(report.AuditType)))
	b.WriteString(strings.Repeat("=", 40) + "\n")
	b.WriteString(fmt.Sprintf("Report ID:  %s\n", report.ReportID))
	b.WriteString(fmt.Sprintf("Generated:  %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	b.WriteString(fmt.Sprintf("Profile:    %s\n", report.Profile))
	if report.AccountID != "" {
		b.WriteString(fmt.Sprintf("Account:    %s\n", report.AccountID))
	}
	b.WriteString(fmt.Sprintf("Regions:    %s\n", strings.Join(report.Regions, ", ")))
	b.WriteString("\n")

	if len(report.Findings) == 0 {
		b.WriteString("No findings.\n")
	}
	for _, f := range report.Findings {
		b.WriteString(fmt.Sprintf("[%s] %s (%s, %s)\n", f.Severity, f.ResourceID, f.ResourceType, f.Region))
		b.WriteString(fmt.Sprintf("    %s\n", f.Explanation))
		if f.Recommendation != "" {
			b.WriteString(fmt.Sprintf("    Recommendation: %s\n", f.Recommendation))
		}
		if f.EstimatedMonthlySavings > 0 {
			b.WriteString(fmt.Sprintf("    Estimated monthly saving: $%.2f\n", f.EstimatedMonthlySavings))
		}
	}
	b.WriteString("\n")

	s := report.Summary
	b.WriteString(fmt.Sprintf("Findings: %d total (%d critical, %d high, %d medium, %d low)\n",
		s.TotalFindings, s.CriticalFindings, s.HighFindings, s.MediumFindings, s.LowFindings))
	if s.TotalEstimatedMonthlySavings > 0 {
		b.WriteString(fmt.Sprintf("Estimated monthly savings: $%.2f\n", s.TotalEstimatedMonthlySavings))
	}
	if report.Billing != nil && len(report.Billing.Days) > 0 {
		latest := report.Billing.Days[len(report.Billing.Days)-1]
		b.WriteString(fmt.Sprintf("Latest daily spend (%s): $%.2f\n", latest.Date, latest.AmountUSD))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
