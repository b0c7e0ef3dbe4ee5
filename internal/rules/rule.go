package rules

import (
	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

// RuleContext carries all collected data for a single profile evaluation.
// It is the sole input to Rule.Evaluate and must contain everything a rule
// needs; rules must never make network calls or read external state.
type RuleContext struct {
	// AccountID is the AWS account being evaluated.
	AccountID string

	// Profile is the AWS profile name for this evaluation run.
	Profile string

	// Snapshot holds the collected domain data. Only the audited domain's
	// field is populated; rules must nil-check their domain before use.
	Snapshot *models.AccountSnapshot

	// Policy holds the active PolicyConfig for threshold overrides. May be
	// nil when no policy is loaded; rules must treat nil as "use defaults".
	Policy *policy.PolicyConfig
}

// Rule is a single deterministic audit rule.
// Rules must be stateless and safe to call concurrently.
// They must never call the AWS SDK or any external service.
type Rule interface {
	// ID returns the unique, stable identifier for this rule
	// (e.g. "IAM_ACCESS_KEY_AGE").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Evaluate inspects the provided context and returns zero or more
	// findings. An empty slice means no issue was detected.
	Evaluate(ctx RuleContext) []models.Finding
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) []models.Finding
}
