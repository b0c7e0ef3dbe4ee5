package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/opsaudit/opsaudit/internal/models"
)

type stubNotifier struct {
	name  string
	err   error
	calls int
}

func (s *stubNotifier) Notify(_ context.Context, _ *models.AuditReport) error {
	s.calls++
	return s.err
}

func (s *stubNotifier) Name() string { return s.name }

func TestNotifyAll(t *testing.T) {
	t.Run("counts successful deliveries", func(t *testing.T) {
		ok := &stubNotifier{name: "slack"}
		bad := &stubNotifier{name: "email", err: errors.New("refused")}
		also := &stubNotifier{name: "slack2"}

		got := NotifyAll(context.Background(), []Notifier{ok, bad, also}, alertReport())
		if got != 2 {
			t.Errorf("delivered = %d, want 2", got)
		}
	})

	t.Run("a failure does not stop later notifiers", func(t *testing.T) {
		bad := &stubNotifier{name: "email", err: errors.New("refused")}
		ok := &stubNotifier{name: "slack"}

		NotifyAll(context.Background(), []Notifier{bad, ok}, alertReport())
		if ok.calls != 1 {
			t.Errorf("later notifier called %d times, want 1", ok.calls)
		}
	})

	t.Run("no notifiers", func(t *testing.T) {
		if got := NotifyAll(context.Background(), nil, alertReport()); got != 0 {
			t.Errorf("delivered = %d, want 0", got)
		}
	})
}
