package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/opsaudit/opsaudit/internal/providers/aws/common"
)

// doctorProvider fakes the AWS provider surface doctor exercises.
type doctorProvider struct {
	profileErr error
	accountID  string
	regionsErr error
}

func (p *doctorProvider) LoadProfile(_ context.Context, profile string) (*common.ProfileConfig, error) {
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	if profile == "" {
		profile = "default"
	}
	return &common.ProfileConfig{ProfileName: profile, AccountID: p.accountID}, nil
}

func (p *doctorProvider) LoadAllProfiles(_ context.Context) ([]*common.ProfileConfig, error) {
	return nil, errors.New("not used by doctor")
}

func (p *doctorProvider) GetActiveRegions(_ context.Context, _ *common.ProfileConfig) ([]string, error) {
	if p.regionsErr != nil {
		return nil, p.regionsErr
	}
	return []string{"us-east-1"}, nil
}

func (p *doctorProvider) ConfigForRegion(cfg *common.ProfileConfig, region string) aws.Config {
	c := cfg.Config.Copy()
	c.Region = region
	return c
}

func TestCollectDoctorResultHealthy(t *testing.T) {
	t.Chdir(t.TempDir()) // no policy file in scope

	provider := &doctorProvider{accountID: "123456789012"}
	result := collectDoctorResult(context.Background(), provider, "")

	if !result.AWS.Credentials || !result.AWS.RegionsOK {
		t.Errorf("AWS checks = %+v", result.AWS)
	}
	if result.AWS.AccountID != "123456789012" {
		t.Errorf("AccountID = %q", result.AWS.AccountID)
	}
	if result.Policy.Present {
		t.Error("policy reported present without a file")
	}
	if !result.OverallHealthy {
		t.Error("expected a healthy result")
	}
}

func TestCollectDoctorResultBadCredentials(t *testing.T) {
	t.Chdir(t.TempDir())

	provider := &doctorProvider{profileErr: errors.New("no credentials")}
	result := collectDoctorResult(context.Background(), provider, "prod")

	if result.AWS.Credentials {
		t.Error("credentials reported OK")
	}
	if result.AWS.Profile != "prod" {
		t.Errorf("Profile = %q", result.AWS.Profile)
	}
	if result.AWS.Error == "" {
		t.Error("error detail missing")
	}
	if result.OverallHealthy {
		t.Error("expected an unhealthy result")
	}
}

func TestCollectDoctorResultRegionDiscoveryFails(t *testing.T) {
	t.Chdir(t.TempDir())

	provider := &doctorProvider{accountID: "123456789012", regionsErr: errors.New("access denied")}
	result := collectDoctorResult(context.Background(), provider, "")

	if !result.AWS.Credentials {
		t.Error("credentials should still be OK")
	}
	if result.AWS.RegionsOK {
		t.Error("region check reported OK")
	}
	if result.OverallHealthy {
		t.Error("expected an unhealthy result")
	}
}

func TestCollectDoctorResultPolicyFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		policyYAML := "version: 1\nrules:\n  EC2_LOW_CPU:\n    severity: HIGH\n"
		if err := os.WriteFile("opsaudit.yaml", []byte(policyYAML), 0o644); err != nil {
			t.Fatal(err)
		}

		result := collectDoctorResult(context.Background(), &doctorProvider{accountID: "1"}, "")
		if !result.Policy.Present || !result.Policy.Valid {
			t.Errorf("policy = %+v", result.Policy)
		}
		if !result.OverallHealthy {
			t.Error("expected a healthy result")
		}
	})

	t.Run("invalid file makes the run unhealthy", func(t *testing.T) {
		t.Chdir(t.TempDir())
		policyYAML := "version: 1\nrules:\n  NOT_A_RULE: {}\n"
		if err := os.WriteFile("opsaudit.yaml", []byte(policyYAML), 0o644); err != nil {
			t.Fatal(err)
		}

		result := collectDoctorResult(context.Background(), &doctorProvider{accountID: "1"}, "")
		if !result.Policy.Present || result.Policy.Valid {
			t.Errorf("policy = %+v", result.Policy)
		}
		if len(result.Policy.Errors) == 0 {
			t.Error("validation errors missing")
		}
		if result.OverallHealthy {
			t.Error("expected an unhealthy result")
		}
	})
}

func TestRunDoctorJSONOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	var buf strings.Builder
	result, err := runDoctor(context.Background(), &doctorProvider{accountID: "1"}, &buf, "json", "")
	if err != nil {
		t.Fatalf("runDoctor: %v", err)
	}

	var decoded DoctorResult
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.OverallHealthy != result.OverallHealthy {
		t.Error("rendered result diverges from the returned result")
	}
}

func TestRunDoctorTableOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	var buf strings.Builder
	if _, err := runDoctor(context.Background(), &doctorProvider{accountID: "1"}, &buf, "table", ""); err != nil {
		t.Fatalf("runDoctor: %v", err)
	}
	if !strings.Contains(buf.String(), "Environment Diagnostics") {
		t.Errorf("table output = %q", buf.String())
	}
}
