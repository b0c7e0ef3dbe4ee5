package config

// Config is the top-level application configuration.
// It is loaded from ~/.config/opsaudit/config.yaml and must never be
// committed with real secrets.
type Config struct {
	AWS    AWSConfig    `yaml:"aws"    json:"aws"`
	Slack  SlackConfig  `yaml:"slack"  json:"slack"`
	Email  EmailConfig  `yaml:"email"  json:"email"`
	Report ReportConfig `yaml:"report" json:"report"`
}

// AWSConfig holds AWS-specific defaults used when flags are not provided.
type AWSConfig struct {
	// DefaultRegion is used when no region flag or profile region is set.
	DefaultRegion string `yaml:"default_region" json:"default_region"`

	// DefaultProfile is used when no --profile flag is provided.
	DefaultProfile string `yaml:"default_profile" json:"default_profile"`
}

// SlackConfig configures the Slack alert channel.
type SlackConfig struct {
	// WebhookURL is the incoming-webhook endpoint. Never committed to
	// version control; prefer the OPSAUDIT_SLACK_WEBHOOK_URL environment
	// variable.
	WebhookURL string `yaml:"webhook_url" json:"webhook_url" env:"OPSAUDIT_SLACK_WEBHOOK_URL"`
}

// EmailConfig configures the SMTP alert channel.
type EmailConfig struct {
	Host     string   `yaml:"host"     json:"host"     env:"OPSAUDIT_SMTP_HOST"`
	Port     int      `yaml:"port"     json:"port"     env:"OPSAUDIT_SMTP_PORT"`
	Username string   `yaml:"username" json:"username" env:"OPSAUDIT_SMTP_USERNAME"`
	Password string   `yaml:"password" json:"password" env:"OPSAUDIT_SMTP_PASSWORD"`
	From     string   `yaml:"from"     json:"from"     env:"OPSAUDIT_SMTP_FROM"`
	To       []string `yaml:"to"       json:"to"       env:"OPSAUDIT_SMTP_TO"`
}

// ReportConfig controls where report files land.
type ReportConfig struct {
	// Dir is the directory report files are written to when --report-file
	// does not name one. Empty means the OS temp directory.
	Dir string `yaml:"dir" json:"dir" env:"OPSAUDIT_REPORT_DIR"`
}

// Loader is the interface for reading Config from disk.
// Default implementation reads from ~/.config/opsaudit/config.yaml.
type Loader interface {
	// Load reads, parses, and validates the configuration file.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}
