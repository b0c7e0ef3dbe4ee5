package policy

// GetThreshold resolves the numeric parameter key for ruleID against the
// policy, falling back to defaultValue when the policy is nil, the rule has
// no entry, or the entry carries no such parameter. Rules call this with
// their compiled-in default, so auditing works without any policy file. Env
// defaults have already been merged into cfg by the time rules run (see
// MergeEnvDefaults).
func GetThreshold(ruleID, key string, defaultValue float64, cfg *PolicyConfig) float64 {
	if cfg == nil {
		return defaultValue
	}
	rc, ok := cfg.Rules[ruleID]
	if !ok {
		return defaultValue
	}
	v, ok := rc.Params[key]
	if !ok {
		return defaultValue
	}
	return v
}
