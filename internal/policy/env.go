package policy

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvDefaults carries threshold overrides read from the process environment.
// Environment values sit between compiled-in rule defaults and policy-file
// params: a policy file param always wins over an environment variable.
//
// All fields are pointers so "variable unset" and "explicitly zero" are
// distinguishable.
type EnvDefaults struct {
	IAMKeyMaxAgeDays       *float64 `env:"OPSAUDIT_IAM_KEY_MAX_AGE_DAYS"`
	IAMRoleMaxIdleDays     *float64 `env:"OPSAUDIT_IAM_ROLE_MAX_IDLE_DAYS"`
	SecretStaleDays        *float64 `env:"OPSAUDIT_SECRET_STALE_DAYS"`
	SecretRotationMaxDays  *float64 `env:"OPSAUDIT_SECRET_ROTATION_MAX_DAYS"`
	S3MultipartMaxAgeDays  *float64 `env:"OPSAUDIT_S3_MULTIPART_MAX_AGE_DAYS"`
	ECRMaxUntagged         *float64 `env:"OPSAUDIT_ECR_MAX_UNTAGGED"`
	APIGWMax5XX            *float64 `env:"OPSAUDIT_APIGW_MAX_5XX"`
	SFNMaxFailed           *float64 `env:"OPSAUDIT_SFN_MAX_FAILED"`
	KinesisMinRecords      *float64 `env:"OPSAUDIT_KINESIS_MIN_RECORDS"`
	KinesisMinRetention    *float64 `env:"OPSAUDIT_KINESIS_MIN_RETENTION_HOURS"`
	LambdaTimeoutWarnPct   *float64 `env:"OPSAUDIT_LAMBDA_TIMEOUT_WARN_PERCENT"`
	ELBMinRequests         *float64 `env:"OPSAUDIT_ELB_MIN_REQUESTS"`
	BillingSpikeMultiplier *float64 `env:"OPSAUDIT_BILLING_SPIKE_MULTIPLIER"`
	EC2MaxCPUPercent       *float64 `env:"OPSAUDIT_EC2_MAX_CPU_PERCENT"`
	EC2MaxStoppedDays      *float64 `env:"OPSAUDIT_EC2_MAX_STOPPED_DAYS"`
	RDSMaxCPUPercent       *float64 `env:"OPSAUDIT_RDS_MAX_CPU_PERCENT"`
	LogMaxRetentionDays    *float64 `env:"OPSAUDIT_LOG_MAX_RETENTION_DAYS"`
}

// LoadEnvDefaults parses OPSAUDIT_* threshold variables from the environment.
func LoadEnvDefaults() (*EnvDefaults, error) {
	var d EnvDefaults
	if err := env.Parse(&d); err != nil {
		return nil, fmt.Errorf("parse threshold environment variables: %w", err)
	}
	return &d, nil
}

// envBinding maps one EnvDefaults field to the rule parameter it overrides.
type envBinding struct {
	ruleID string
	key    string
	value  *float64
}

func (d *EnvDefaults) bindings() []envBinding {
	return []envBinding{
		{"IAM_ACCESS_KEY_AGE", "max_age_days", d.IAMKeyMaxAgeDays},
		{"IAM_ROLE_UNUSED", "max_idle_days", d.IAMRoleMaxIdleDays},
		{"SECRET_STALE", "stale_days", d.SecretStaleDays},
		{"SECRET_ROTATION_LAPSED", "rotation_max_days", d.SecretRotationMaxDays},
		{"S3_STALE_MULTIPART", "max_age_days", d.S3MultipartMaxAgeDays},
		{"ECR_UNTAGGED_IMAGES", "max_untagged", d.ECRMaxUntagged},
		{"APIGW_HIGH_5XX", "max_errors", d.APIGWMax5XX},
		{"SFN_EXECUTIONS_FAILING", "max_failed", d.SFNMaxFailed},
		{"KINESIS_STREAM_IDLE", "min_records", d.KinesisMinRecords},
		{"KINESIS_LOW_RETENTION", "min_retention_hours", d.KinesisMinRetention},
		{"LAMBDA_TIMEOUT_NEAR_LIMIT", "warn_percent", d.LambdaTimeoutWarnPct},
		{"ELB_IDLE", "min_requests", d.ELBMinRequests},
		{"BILLING_SPIKE", "spike_multiplier", d.BillingSpikeMultiplier},
		{"EC2_LOW_CPU", "max_cpu_percent", d.EC2MaxCPUPercent},
		{"EC2_STOPPED_LONG", "max_stopped_days", d.EC2MaxStoppedDays},
		{"RDS_LOW_CPU", "max_cpu_percent", d.RDSMaxCPUPercent},
		{"LOG_GROUP_NO_RETENTION", "max_retention_days", d.LogMaxRetentionDays},
	}
}

// MergeEnvDefaults folds set environment thresholds into cfg as rule params,
// without overwriting params already present in the policy file. When cfg is
// nil and at least one variable is set, a fresh PolicyConfig is returned;
// when cfg is nil and nothing is set, nil is returned.
func MergeEnvDefaults(cfg *PolicyConfig, d *EnvDefaults) *PolicyConfig {
	if d == nil {
		return cfg
	}

	for _, b := range d.bindings() {
		if b.value == nil {
			continue
		}
		if cfg == nil {
			cfg = &PolicyConfig{
				Version: 1,
				Domains: make(map[string]DomainConfig),
				Rules:   make(map[string]RuleConfig),
			}
		}
		if cfg.Rules == nil {
			cfg.Rules = make(map[string]RuleConfig)
		}
		rc := cfg.Rules[b.ruleID]
		if rc.Params == nil {
			rc.Params = make(map[string]float64)
		}
		if _, exists := rc.Params[b.key]; !exists {
			rc.Params[b.key] = *b.value
		}
		cfg.Rules[b.ruleID] = rc
	}
	return cfg
}
