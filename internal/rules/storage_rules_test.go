package rules

import (
	"testing"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

func storageCtx(snap models.StorageSnapshot) RuleContext {
	if snap.CollectedAt.IsZero() {
		snap.CollectedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	return RuleContext{
		AccountID: "111122223333",
		Profile:   "test",
		Snapshot:  &models.AccountSnapshot{Storage: &snap},
	}
}

func TestS3BucketHygieneRules(t *testing.T) {
	hardened := models.S3Bucket{
		Name: "hardened", Region: "global",
		PublicAccessBlocked: true, DefaultEncryption: true,
		HasLifecycle: true, LoggingEnabled: true,
	}
	bare := models.S3Bucket{Name: "bare", Region: "global"}

	snap := models.StorageSnapshot{Buckets: []models.S3Bucket{hardened, bare}}

	cases := []struct {
		name string
		rule Rule
		sev  models.Severity
	}{
		{"public access block", S3PublicAccessBlockRule{}, models.SeverityHigh},
		{"default encryption", S3DefaultEncryptionMissingRule{}, models.SeverityHigh},
		{"lifecycle", S3LifecycleMissingRule{}, models.SeverityLow},
		{"logging", S3LoggingDisabledRule{}, models.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			findings := tc.rule.Evaluate(storageCtx(snap))
			if len(findings) != 1 {
				t.Fatalf("want 1 finding, got %d", len(findings))
			}
			if findings[0].ResourceID != "bare" {
				t.Errorf("ResourceID = %q; want bare", findings[0].ResourceID)
			}
			if findings[0].Severity != tc.sev {
				t.Errorf("Severity = %q; want %q", findings[0].Severity, tc.sev)
			}
		})
	}
}

func TestS3StaleMultipartRule_Evaluate(t *testing.T) {
	collected := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fresh uploads are not flagged", func(t *testing.T) {
		snap := models.StorageSnapshot{CollectedAt: collected, Buckets: []models.S3Bucket{{
			Name: "active", Region: "global",
			MultipartUploads: []models.S3MultipartUpload{
				{Key: "big.tar", UploadID: "u1", InitiatedAt: collected.Add(-12 * time.Hour)},
			},
		}}}
		if got := (S3StaleMultipartRule{}).Evaluate(storageCtx(snap)); len(got) != 0 {
			t.Errorf("expected 0 findings, got %d", len(got))
		}
	})

	t.Run("stale uploads fire once per bucket with a count", func(t *testing.T) {
		snap := models.StorageSnapshot{CollectedAt: collected, Buckets: []models.S3Bucket{{
			Name: "neglected", Region: "global",
			MultipartUploads: []models.S3MultipartUpload{
				{Key: "a", UploadID: "u1", InitiatedAt: collected.AddDate(0, 0, -10)},
				{Key: "b", UploadID: "u2", InitiatedAt: collected.AddDate(0, 0, -40)},
				{Key: "c", UploadID: "u3", InitiatedAt: collected.Add(-1 * time.Hour)},
			},
		}}}
		findings := (S3StaleMultipartRule{}).Evaluate(storageCtx(snap))
		if len(findings) != 1 {
			t.Fatalf("want 1 finding, got %d", len(findings))
		}
		if findings[0].Metadata["stale_uploads"] != 2 {
			t.Errorf("Metadata[stale_uploads] = %v; want 2", findings[0].Metadata["stale_uploads"])
		}
		if findings[0].Metadata["oldest_days"] != 40 {
			t.Errorf("Metadata[oldest_days] = %v; want 40", findings[0].Metadata["oldest_days"])
		}
	})
}

func TestECRRepoEmptyRule_Evaluate(t *testing.T) {
	t.Run("unknown counts are never treated as empty", func(t *testing.T) {
		snap := models.StorageSnapshot{Repositories: []models.ECRRepository{
			{Name: "unlistable", Region: "us-east-1", CountsKnown: false},
		}}
		if got := (ECRRepoEmptyRule{}).Evaluate(storageCtx(snap)); len(got) != 0 {
			t.Errorf("expected 0 findings when counts unknown, got %d", len(got))
		}
	})

	t.Run("confirmed empty repository fires", func(t *testing.T) {
		snap := models.StorageSnapshot{Repositories: []models.ECRRepository{
			{Name: "abandoned", Region: "us-east-1", CountsKnown: true, ImageCount: 0},
			{Name: "busy", Region: "us-east-1", CountsKnown: true, ImageCount: 12},
		}}
		findings := (ECRRepoEmptyRule{}).Evaluate(storageCtx(snap))
		if len(findings) != 1 {
			t.Fatalf("want 1 finding, got %d", len(findings))
		}
		if findings[0].ResourceID != "abandoned" {
			t.Errorf("ResourceID = %q; want abandoned", findings[0].ResourceID)
		}
	})
}

func TestECRUntaggedImagesRule_Evaluate(t *testing.T) {
	t.Run("at threshold is not flagged", func(t *testing.T) {
		snap := models.StorageSnapshot{Repositories: []models.ECRRepository{
			{Name: "app", Region: "us-east-1", CountsKnown: true, ImageCount: 30, UntaggedCount: 10},
		}}
		if got := (ECRUntaggedImagesRule{}).Evaluate(storageCtx(snap)); len(got) != 0 {
			t.Errorf("untagged=10 (at threshold): expected 0 findings, got %d", len(got))
		}
	})

	t.Run("above threshold fires with counts in metadata", func(t *testing.T) {
		snap := models.StorageSnapshot{Repositories: []models.ECRRepository{
			{Name: "app", Region: "us-east-1", CountsKnown: true, ImageCount: 60, UntaggedCount: 25},
		}}
		findings := (ECRUntaggedImagesRule{}).Evaluate(storageCtx(snap))
		if len(findings) != 1 {
			t.Fatalf("want 1 finding, got %d", len(findings))
		}
		if findings[0].Metadata["untagged_count"] != 25 {
			t.Errorf("Metadata[untagged_count] = %v; want 25", findings[0].Metadata["untagged_count"])
		}
	})
}
