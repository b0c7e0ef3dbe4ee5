package alert

import (
	"context"
	"log/slog"

	"github.com/opsaudit/opsaudit/internal/models"
)

// NotifyAll delivers the report to every notifier in turn and returns the
// number of successful deliveries. Failures are logged and skipped; alert
// delivery never fails an audit.
func NotifyAll(ctx context.Context, notifiers []Notifier, report *models.AuditReport) int {
	delivered := 0
	for _, n := range notifiers {
		if err := n.Notify(ctx, report); err != nil {
			slog.Warn("alert delivery failed", "channel", n.Name(), "error", err)
			continue
		}
		slog.Info("alert delivered", "channel", n.Name())
		delivered++
	}
	return delivered
}
