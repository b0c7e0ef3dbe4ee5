package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/opsaudit/opsaudit/internal/models"
)

// collectS3Buckets lists all S3 buckets in the account and probes each
// bucket's audit posture: public access block, default encryption, lifecycle
// configuration, server access logging, and in-progress multipart uploads.
//
// S3 bucket listing is account-global; buckets are reported with Region
// "global". Per-bucket probe failures degrade to "not configured", matching
// how GetBucketEncryption and friends signal absence (an error).
func collectS3Buckets(ctx context.Context, client s3APIClient) ([]models.S3Bucket, error) {
	out, err := client.ListBuckets(ctx, &s3svc.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list S3 buckets: %w", err)
	}

	buckets := make([]models.S3Bucket, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		bucket := models.S3Bucket{
			Name:                name,
			Region:              "global",
			PublicAccessBlocked: bucketPublicAccessBlocked(ctx, client, name),
			DefaultEncryption:   bucketEncryptionEnabled(ctx, client, name),
			HasLifecycle:        bucketHasLifecycle(ctx, client, name),
			LoggingEnabled:      bucketLoggingEnabled(ctx, client, name),
			MultipartUploads:    bucketMultipartUploads(ctx, client, name),
		}
		if b.CreationDate != nil {
			bucket.CreatedAt = *b.CreationDate
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// bucketPublicAccessBlocked returns true only when all four public access
// block settings are enabled. A missing configuration
// (NoSuchPublicAccessBlockConfiguration) or any other error returns false.
func bucketPublicAccessBlocked(ctx context.Context, client s3APIClient, name string) bool {
	out, err := client.GetPublicAccessBlock(ctx, &s3svc.GetPublicAccessBlockInput{
		Bucket: aws.String(name),
	})
	if err != nil || out.PublicAccessBlockConfiguration == nil {
		return false
	}
	c := out.PublicAccessBlockConfiguration
	return aws.ToBool(c.BlockPublicAcls) &&
		aws.ToBool(c.IgnorePublicAcls) &&
		aws.ToBool(c.BlockPublicPolicy) &&
		aws.ToBool(c.RestrictPublicBuckets)
}

// bucketEncryptionEnabled returns true when GetBucketEncryption returns a
// valid server-side encryption configuration. A missing configuration
// (ServerSideEncryptionConfigurationNotFoundError) or any other error is
// treated as "encryption not configured".
func bucketEncryptionEnabled(ctx context.Context, client s3APIClient, name string) bool {
	_, err := client.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{
		Bucket: aws.String(name),
	})
	return err == nil
}

// bucketHasLifecycle returns true when the bucket has at least one lifecycle
// rule. NoSuchLifecycleConfiguration (or any other error) returns false.
func bucketHasLifecycle(ctx context.Context, client s3APIClient, name string) bool {
	out, err := client.GetBucketLifecycleConfiguration(ctx, &s3svc.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return false
	}
	return len(out.Rules) > 0
}

// bucketLoggingEnabled returns true when server access logging is configured
// with a target bucket.
func bucketLoggingEnabled(ctx context.Context, client s3APIClient, name string) bool {
	out, err := client.GetBucketLogging(ctx, &s3svc.GetBucketLoggingInput{
		Bucket: aws.String(name),
	})
	if err != nil || out.LoggingEnabled == nil {
		return false
	}
	return out.LoggingEnabled.TargetBucket != nil
}

// bucketMultipartUploads returns the bucket's in-progress multipart uploads.
// Listing failures return nil: the staleness rule then simply has nothing
// to evaluate for this bucket.
func bucketMultipartUploads(ctx context.Context, client s3APIClient, name string) []models.S3MultipartUpload {
	out, err := client.ListMultipartUploads(ctx, &s3svc.ListMultipartUploadsInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return nil
	}

	uploads := make([]models.S3MultipartUpload, 0, len(out.Uploads))
	for _, u := range out.Uploads {
		upload := models.S3MultipartUpload{
			Key:      aws.ToString(u.Key),
			UploadID: aws.ToString(u.UploadId),
		}
		if u.Initiated != nil {
			upload.InitiatedAt = *u.Initiated
		}
		uploads = append(uploads, upload)
	}
	return uploads
}
