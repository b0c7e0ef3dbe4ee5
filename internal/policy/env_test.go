package policy

import "testing"

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("OPSAUDIT_IAM_KEY_MAX_AGE_DAYS", "60")
	t.Setenv("OPSAUDIT_EC2_MAX_CPU_PERCENT", "15.5")

	d, err := LoadEnvDefaults()
	if err != nil {
		t.Fatalf("LoadEnvDefaults: %v", err)
	}
	if d.IAMKeyMaxAgeDays == nil || *d.IAMKeyMaxAgeDays != 60 {
		t.Errorf("IAMKeyMaxAgeDays = %v, want 60", d.IAMKeyMaxAgeDays)
	}
	if d.EC2MaxCPUPercent == nil || *d.EC2MaxCPUPercent != 15.5 {
		t.Errorf("EC2MaxCPUPercent = %v, want 15.5", d.EC2MaxCPUPercent)
	}
	if d.RDSMaxCPUPercent != nil {
		t.Errorf("RDSMaxCPUPercent = %v, want nil for an unset variable", *d.RDSMaxCPUPercent)
	}
}

func TestLoadEnvDefaultsInvalidValue(t *testing.T) {
	t.Setenv("OPSAUDIT_ELB_MIN_REQUESTS", "lots")
	if _, err := LoadEnvDefaults(); err == nil {
		t.Error("expected error for a non-numeric value")
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestMergeEnvDefaults(t *testing.T) {
	t.Run("nil defaults returns config unchanged", func(t *testing.T) {
		cfg := &PolicyConfig{Version: 1}
		if got := MergeEnvDefaults(cfg, nil); got != cfg {
			t.Error("config should pass through untouched")
		}
	})

	t.Run("nil config and nothing set returns nil", func(t *testing.T) {
		if got := MergeEnvDefaults(nil, &EnvDefaults{}); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("nil config with a set variable builds a fresh config", func(t *testing.T) {
		d := &EnvDefaults{EC2MaxCPUPercent: floatPtr(15)}
		got := MergeEnvDefaults(nil, d)
		if got == nil {
			t.Fatal("expected a config to be created")
		}
		if got.Version != 1 {
			t.Errorf("Version = %d, want 1", got.Version)
		}
		if v := got.Rules["EC2_LOW_CPU"].Params["max_cpu_percent"]; v != 15 {
			t.Errorf("max_cpu_percent = %v, want 15", v)
		}
	})

	t.Run("file param wins over environment", func(t *testing.T) {
		cfg := &PolicyConfig{
			Version: 1,
			Rules: map[string]RuleConfig{
				"EC2_LOW_CPU": {Params: map[string]float64{"max_cpu_percent": 30}},
			},
		}
		d := &EnvDefaults{EC2MaxCPUPercent: floatPtr(15)}
		got := MergeEnvDefaults(cfg, d)
		if v := got.Rules["EC2_LOW_CPU"].Params["max_cpu_percent"]; v != 30 {
			t.Errorf("max_cpu_percent = %v, want the file value 30", v)
		}
	})

	t.Run("environment fills gaps next to file params", func(t *testing.T) {
		cfg := &PolicyConfig{
			Version: 1,
			Rules: map[string]RuleConfig{
				"EC2_LOW_CPU": {Params: map[string]float64{"max_cpu_percent": 30}},
			},
		}
		d := &EnvDefaults{ELBMinRequests: floatPtr(250)}
		got := MergeEnvDefaults(cfg, d)
		if v := got.Rules["ELB_IDLE"].Params["min_requests"]; v != 250 {
			t.Errorf("min_requests = %v, want 250", v)
		}
	})
}
