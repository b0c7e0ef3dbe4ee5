package rules

import (
	"testing"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

func spendCtx(snap models.SpendSnapshot) RuleContext {
	if snap.CollectedAt.IsZero() {
		snap.CollectedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	if snap.LookbackDays == 0 {
		snap.LookbackDays = 30
	}
	return RuleContext{
		AccountID: "111122223333",
		Profile:   "test",
		Snapshot:  &models.AccountSnapshot{Spend: &snap},
	}
}

func TestBillingSpikeRule_Evaluate(t *testing.T) {
	days := func(amounts ...float64) []models.DailyCost {
		out := make([]models.DailyCost, len(amounts))
		base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		for i, a := range amounts {
			out[i] = models.DailyCost{Date: base.AddDate(0, 0, i).Format("2006-01-02"), AmountUSD: a}
		}
		return out
	}

	t.Run("steady spend is not flagged", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{Billing: &models.BillingSummary{
			Days: days(100, 101, 99, 100, 102, 98, 100, 101),
		}})
		if got := (BillingSpikeRule{}).Evaluate(ctx); len(got) != 0 {
			t.Errorf("expected 0 findings, got %d", len(got))
		}
	})

	t.Run("latest day above multiplier fires once for the account", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{Billing: &models.BillingSummary{
			Days: days(100, 100, 100, 100, 100, 100, 100, 350),
		}})
		findings := (BillingSpikeRule{}).Evaluate(ctx)
		if len(findings) != 1 {
			t.Fatalf("want 1 finding, got %d", len(findings))
		}
		f := findings[0]
		if f.ResourceType != models.ResourceAccount {
			t.Errorf("ResourceType = %q; want %q", f.ResourceType, models.ResourceAccount)
		}
		if f.Severity != models.SeverityHigh {
			t.Errorf("Severity = %q; want HIGH", f.Severity)
		}
		if f.Metadata["latest_usd"] != 350.0 {
			t.Errorf("Metadata[latest_usd] = %v; want 350", f.Metadata["latest_usd"])
		}
	})

	t.Run("fewer than two days of data is skipped", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{Billing: &models.BillingSummary{Days: days(100)}})
		if got := (BillingSpikeRule{}).Evaluate(ctx); len(got) != 0 {
			t.Errorf("expected 0 findings, got %d", len(got))
		}
	})

	t.Run("zero baseline is skipped", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{Billing: &models.BillingSummary{Days: days(0, 0, 0, 50)}})
		if got := (BillingSpikeRule{}).Evaluate(ctx); len(got) != 0 {
			t.Errorf("expected 0 findings with zero baseline, got %d", len(got))
		}
	})

	t.Run("nil billing is skipped", func(t *testing.T) {
		if got := (BillingSpikeRule{}).Evaluate(spendCtx(models.SpendSnapshot{})); len(got) != 0 {
			t.Errorf("expected 0 findings without billing data, got %d", len(got))
		}
	})
}

func TestEC2LowCPURule_Evaluate(t *testing.T) {
	makeInst := func(state string, cpu models.MetricValue) models.EC2Instance {
		return models.EC2Instance{
			InstanceID: "i-abc123", Region: "us-east-1",
			InstanceType: "m5.large", State: state, AvgCPU: cpu,
		}
	}

	t.Run("non-running states are not flagged", func(t *testing.T) {
		for _, state := range []string{"stopped", "terminated", "pending", "shutting-down"} {
			t.Run(state, func(t *testing.T) {
				ctx := spendCtx(models.SpendSnapshot{Instances: []models.EC2Instance{makeInst(state, models.Measured(3))}})
				if got := (EC2LowCPURule{}).Evaluate(ctx); len(got) != 0 {
					t.Errorf("state=%q: expected 0 findings, got %d", state, len(got))
				}
			})
		}
	})

	t.Run("missing CPU data is skipped", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{Instances: []models.EC2Instance{makeInst("running", models.NoData())}})
		if got := (EC2LowCPURule{}).Evaluate(ctx); len(got) != 0 {
			t.Errorf("expected 0 findings without CPU data, got %d", len(got))
		}
	})

	t.Run("CPU at threshold is not flagged", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{Instances: []models.EC2Instance{makeInst("running", models.Measured(10))}})
		if got := (EC2LowCPURule{}).Evaluate(ctx); len(got) != 0 {
			t.Errorf("cpu=10 (at threshold): expected 0 findings, got %d", len(got))
		}
	})

	t.Run("running instance with low CPU is flagged with savings", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{Instances: []models.EC2Instance{makeInst("running", models.Measured(3.5))}})
		findings := (EC2LowCPURule{}).Evaluate(ctx)
		if len(findings) != 1 {
			t.Fatalf("want 1 finding, got %d", len(findings))
		}
		if want := "EC2_LOW_CPU-i-abc123"; findings[0].ID != want {
			t.Errorf("ID = %q; want %q", findings[0].ID, want)
		}
		if findings[0].EstimatedMonthlySavings <= 0 {
			t.Error("expected a positive estimated saving")
		}
	})
}

func TestEC2StoppedLongRule_Evaluate(t *testing.T) {
	collected := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("stopped instance without a stop timestamp is skipped", func(t *testing.T) {
		ctx := spendCtx(models.SpendSnapshot{CollectedAt: collected, Instances: []models.EC2Instance{
			{InstanceID: "i-1", Region: "us-east-1", State: "stopped"},
		}})
		if got := (EC2StoppedLongRule{}).Evaluate(ctx); len(got) != 0 {
			t.Errorf("expected 0 findings without stop time, got %d", len(got))
		}
	})

	t.Run("recently stopped instance is not flagged", func(t *testing.T) {
		stoppedAt := collected.AddDate(0, 0, -5)
		ctx := spendCtx(models.SpendSnapshot{CollectedAt: collected, Instances: []models.EC2Instance{
			{InstanceID: "i-1", Region: "us-east-1", State: "stopped", StoppedAt: &stoppedAt},
		}})
		if got := (EC2StoppedLongRule{}).Evaluate(ctx); len(got) != 0 {
			t.Errorf("expected 0 findings, got %d", len(got))
		}
	})

	t.Run("long-stopped instance fires with stopped days", func(t *testing.T) {
		stoppedAt := collected.AddDate(0, 0, -90)
		ctx := spendCtx(models.SpendSnapshot{CollectedAt: collected, Instances: []models.EC2Instance{
			{InstanceID: "i-old", Region: "us-east-1", InstanceType: "t3.micro", State: "stopped", StoppedAt: &stoppedAt},
		}})
		findings := (EC2StoppedLongRule{}).Evaluate(ctx)
		if len(findings) != 1 {
			t.Fatalf("want 1 finding, got %d", len(findings))
		}
		if findings[0].Metadata["stopped_days"] != 90 {
			t.Errorf("Metadata[stopped_days] = %v; want 90", findings[0].Metadata["stopped_days"])
		}
	})
}

func TestEBSUnattachedRule_Evaluate(t *testing.T) {
	ctx := spendCtx(models.SpendSnapshot{Volumes: []models.EBSVolume{
		{VolumeID: "vol-inuse", Region: "us-east-1", VolumeType: "gp3", SizeGB: 100, State: "in-use", Attached: true},
		{VolumeID: "vol-orphan", Region: "us-east-1", VolumeType: "gp3", SizeGB: 50, State: "available", Attached: false},
	}})
	findings := (EBSUnattachedRule{}).Evaluate(ctx)
	if len(findings) != 1 {
		t.Fatalf("want 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.ResourceID != "vol-orphan" {
		t.Errorf("ResourceID = %q; want vol-orphan", f.ResourceID)
	}
	if want := 50 * 0.08; f.EstimatedMonthlySavings != want {
		t.Errorf("EstimatedMonthlySavings = %v; want %v", f.EstimatedMonthlySavings, want)
	}
}

func TestRDSLowCPURule_Evaluate(t *testing.T) {
	makeDB := func(status string, cpu models.MetricValue) models.RDSInstance {
		return models.RDSInstance{
			DBInstanceID: "prod-db", Region: "us-east-1",
			DBInstanceClass: "db.m5.large", Engine: "postgres",
			Status: status, AvgCPU: cpu,
		}
	}

	cases := []struct {
		name string
		db   models.RDSInstance
		want int
	}{
		{"available low CPU fires", makeDB("available", models.Measured(2)), 1},
		{"at threshold does not fire", makeDB("available", models.Measured(5)), 0},
		{"no data is skipped", makeDB("available", models.NoData()), 0},
		{"stopped instance is skipped", makeDB("stopped", models.Measured(2)), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := spendCtx(models.SpendSnapshot{DBInstances: []models.RDSInstance{tc.db}})
			if got := (RDSLowCPURule{}).Evaluate(ctx); len(got) != tc.want {
				t.Errorf("got %d findings, want %d", len(got), tc.want)
			}
		})
	}
}

func TestLogGroupNoRetentionRule_Evaluate(t *testing.T) {
	retention := func(d int32) *int32 { return &d }
	const gib = int64(1) << 30

	cases := []struct {
		name string
		lg   models.LogGroup
		want int
	}{
		{"large unbounded group fires", models.LogGroup{Name: "/aws/lambda/big", Region: "us-east-1", StoredBytes: 5 * gib}, 1},
		{"tiny unbounded group is skipped", models.LogGroup{Name: "/aws/lambda/tiny", Region: "us-east-1", StoredBytes: 1024}, 0},
		{"bounded retention is clean", models.LogGroup{Name: "/aws/lambda/ok", Region: "us-east-1", RetentionDays: retention(30), StoredBytes: 5 * gib}, 0},
		{"excessive retention fires", models.LogGroup{Name: "/aws/lambda/hoard", Region: "us-east-1", RetentionDays: retention(3653), StoredBytes: 5 * gib}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := spendCtx(models.SpendSnapshot{LogGroups: []models.LogGroup{tc.lg}})
			if got := (LogGroupNoRetentionRule{}).Evaluate(ctx); len(got) != tc.want {
				t.Errorf("got %d findings, want %d", len(got), tc.want)
			}
		})
	}
}
