package policy

import "testing"

func TestGetThreshold(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Rules: map[string]RuleConfig{
			"EC2_LOW_CPU": {
				Params: map[string]float64{"max_cpu_percent": 25},
			},
			"ELB_IDLE": {},
		},
	}

	t.Run("nil config returns default", func(t *testing.T) {
		if got := GetThreshold("EC2_LOW_CPU", "max_cpu_percent", 10, nil); got != 10 {
			t.Errorf("got %v, want 10", got)
		}
	})

	t.Run("unknown rule returns default", func(t *testing.T) {
		if got := GetThreshold("RDS_LOW_CPU", "max_cpu_percent", 5, cfg); got != 5 {
			t.Errorf("got %v, want 5", got)
		}
	})

	t.Run("rule without params returns default", func(t *testing.T) {
		if got := GetThreshold("ELB_IDLE", "min_requests", 100, cfg); got != 100 {
			t.Errorf("got %v, want 100", got)
		}
	})

	t.Run("configured value wins over default", func(t *testing.T) {
		if got := GetThreshold("EC2_LOW_CPU", "max_cpu_percent", 10, cfg); got != 25 {
			t.Errorf("got %v, want 25", got)
		}
	})

	t.Run("missing key under configured rule returns default", func(t *testing.T) {
		if got := GetThreshold("EC2_LOW_CPU", "other_key", 42, cfg); got != 42 {
			t.Errorf("got %v, want 42", got)
		}
	})
}
