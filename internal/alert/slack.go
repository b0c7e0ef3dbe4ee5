package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// slackTimeout bounds a single webhook delivery attempt.
const slackTimeout = 10 * time.Second

// SlackNotifier posts the report summary to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlackNotifier returns a notifier posting to webhookURL.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: slackTimeout},
	}
}

// NewSlackNotifierWithClient injects a custom HTTP client. Used by tests.
func NewSlackNotifierWithClient(webhookURL string, client *http.Client) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, httpClient: client}
}

func (n *SlackNotifier) Name() string { return "slack" }

// slackPayload is the minimal incoming-webhook message body.
type slackPayload struct {
	Text string `json:"text"`
}

// Notify posts the summary as a webhook message. Any non-2xx response is an
// error; Slack returns the body "ok" on success.
func (n *SlackNotifier) Notify(ctx context.Context, report *models.AuditReport) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	body, err := json.Marshal(slackPayload{Text: summaryText(report)})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}
