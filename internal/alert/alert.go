// Package alert delivers finished audit reports to external channels.
//
// Notifiers are best effort: a delivery failure is reported to the caller
// but must never fail the audit itself. The CLI logs delivery errors and
// keeps the report on disk.
package alert

import (
	"context"
	"fmt"

	"github.com/opsaudit/opsaudit/internal/models"
)

// Notifier delivers a rendered report summary to one channel.
type Notifier interface {
	// Notify sends the report summary. Implementations must honour ctx
	// cancellation and return a descriptive error on delivery failure.
	Notify(ctx context.Context, report *models.AuditReport) error

	// Name identifies the channel in logs ("slack", "email").
	Name() string
}

// summaryText renders the one-paragraph summary every channel sends.
func summaryText(report *models.AuditReport) string {
	s := report.Summary
	text := fmt.Sprintf("%s audit for profile %q: %d findings (%d critical, %d high, %d medium, %d low)",
		report.AuditType, report.Profile,
		s.TotalFindings, s.CriticalFindings, s.HighFindings, s.MediumFindings, s.LowFindings)
	if s.TotalEstimatedMonthlySavings > 0 {
		text += fmt.Sprintf(", estimated monthly savings $%.2f", s.TotalEstimatedMonthlySavings)
	}
	return text
}
