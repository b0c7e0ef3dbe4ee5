package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestConfigPath(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		l := NewDefaultLoader("/etc/opsaudit.yaml")
		if got := l.ConfigPath(); got != "/etc/opsaudit.yaml" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("default under the user config dir", func(t *testing.T) {
		l := NewDefaultLoader("")
		got := l.ConfigPath()
		if filepath.Base(got) != "config.yaml" || filepath.Base(filepath.Dir(got)) != "opsaudit" {
			t.Errorf("got %q, want .../opsaudit/config.yaml", got)
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
aws:
  default_region: eu-west-1
  default_profile: prod
slack:
  webhook_url: https://hooks.slack.com/services/T/B/X
email:
  host: smtp.example.com
  port: 587
  from: audit@example.com
  to:
    - ops@example.com
report:
  dir: /var/reports
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewDefaultLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AWS.DefaultRegion != "eu-west-1" || cfg.AWS.DefaultProfile != "prod" {
		t.Errorf("AWS = %+v", cfg.AWS)
	}
	if cfg.Slack.WebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("WebhookURL = %q", cfg.Slack.WebhookURL)
	}
	if cfg.Email.Host != "smtp.example.com" || cfg.Email.Port != 587 {
		t.Errorf("Email = %+v", cfg.Email)
	}
	if !reflect.DeepEqual(cfg.Email.To, []string{"ops@example.com"}) {
		t.Errorf("Email.To = %v", cfg.Email.To)
	}
	if cfg.Report.Dir != "/var/reports" {
		t.Errorf("Report.Dir = %q", cfg.Report.Dir)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := NewDefaultLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AWS.DefaultProfile != "" {
		t.Errorf("unexpected config content: %+v", cfg)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("email:\n  host: file.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPSAUDIT_SMTP_HOST", "env.example.com")
	t.Setenv("OPSAUDIT_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/env")

	cfg, err := NewDefaultLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Email.Host != "env.example.com" {
		t.Errorf("Email.Host = %q, want the environment value", cfg.Email.Host)
	}
	if cfg.Slack.WebhookURL != "https://hooks.slack.com/services/env" {
		t.Errorf("WebhookURL = %q", cfg.Slack.WebhookURL)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("aws: [oops\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDefaultLoader(path).Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
