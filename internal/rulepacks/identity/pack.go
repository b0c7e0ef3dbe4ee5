// Package identity provides the identity audit rule pack.
// It groups the IAM, KMS, and Secrets Manager rules into a single New()
// function that the CLI wires into a DefaultRuleRegistry before invoking the
// audit engine.
//
// Convention: every rule pack lives in internal/rulepacks/<domain>/pack.go
// and exposes a single New() func returning []rules.Rule.
// Future identity rules should be added to the slice returned by New().
package identity

import "github.com/opsaudit/opsaudit/internal/rules"

// New returns the default identity audit rule pack.
func New() []rules.Rule {
	return []rules.Rule{
		rules.IAMAccessKeyAgeRule{},        // HIGH:   active access key past rotation age
		rules.IAMPolicyWildcardRule{},      // HIGH:   policy allows all actions on all resources
		rules.IAMUserNoMFARule{},           // MEDIUM: console user has no MFA device
		rules.IAMRoleUnusedRule{},          // MEDIUM: role not assumed within idle window
		rules.KMSRotationDisabledRule{},    // MEDIUM: symmetric key without automatic rotation
		rules.SecretStaleRule{},            // MEDIUM: secret not retrieved within stale window
		rules.SecretRotationLapsedRule{},   // MEDIUM: secret rotation overdue
		rules.IAMPolicyUnattachedRule{},    // LOW:    customer policy attached to nothing
	}
}
