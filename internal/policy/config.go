package policy

// PolicyConfig is the parsed representation of a version-1 policy file.
// A policy file lets operators disable domains or rules, override finding
// severities, tune numeric rule parameters, and configure CI enforcement,
// all without rebuilding the binary.
type PolicyConfig struct {
	Version     int                          `yaml:"version"`
	Domains     map[string]DomainConfig      `yaml:"domains"`
	Rules       map[string]RuleConfig        `yaml:"rules"`
	Enforcement map[string]EnforcementConfig `yaml:"enforcement"`
}

// DomainConfig controls a whole audit domain.
type DomainConfig struct {
	Enabled bool `yaml:"enabled"`
	// MinSeverity drops findings below this severity for the domain.
	// Empty means no floor.
	MinSeverity string `yaml:"min_severity,omitempty"`
}

// RuleConfig controls a single rule.
type RuleConfig struct {
	// Enabled is a tri-state: nil means "use default (enabled)".
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Severity string `yaml:"severity,omitempty"`
	// Params holds numeric threshold overrides keyed by parameter name
	// (e.g. max_age_days: 60).
	Params map[string]float64 `yaml:"params,omitempty"`
}

// EnforcementConfig controls CI exit-code behaviour per domain.
type EnforcementConfig struct {
	// FailOnSeverity makes the audit command exit non-zero when any finding
	// at or above this severity is present.
	FailOnSeverity string `yaml:"fail_on_severity,omitempty"`
}
