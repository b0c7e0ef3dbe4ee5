package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/output"
)

// EmailConfig holds the SMTP settings for report delivery.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// sendFunc matches smtp.SendMail and is swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends the full plain-text report by SMTP.
type EmailNotifier struct {
	cfg  EmailConfig
	send sendFunc
}

// NewEmailNotifier returns a notifier using the given SMTP settings.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail}
}

// NewEmailNotifierWithSender injects the send function. Used by tests.
func NewEmailNotifierWithSender(cfg EmailConfig, send sendFunc) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: send}
}

func (n *EmailNotifier) Name() string { return "email" }

// Notify renders the report as plain text and mails it to every recipient.
// smtp.SendMail does not take a context, so cancellation is checked before
// the blocking call.
func (n *EmailNotifier) Notify(ctx context.Context, report *models.AuditReport) error {
	if n.cfg.Host == "" || len(n.cfg.To) == 0 {
		return fmt.Errorf("smtp host and recipients must be configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body strings.Builder
	if err := output.RenderReport(&body, report); err != nil {
		return fmt.Errorf("render report body: %w", err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(n.cfg.To, ", "))
	fmt.Fprintf(&msg, "Subject: [opsaudit] %s audit: %d findings\r\n", report.AuditType, report.Summary.TotalFindings)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body.String())

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.From, n.cfg.To, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}
