// Package storage provides the storage audit rule pack covering S3 buckets
// and ECR repositories.
package storage

import "github.com/opsaudit/opsaudit/internal/rules"

// New returns the default storage audit rule pack.
func New() []rules.Rule {
	return []rules.Rule{
		rules.S3PublicAccessBlockRule{},         // HIGH: bucket missing full public access block
		rules.S3DefaultEncryptionMissingRule{},  // HIGH: bucket without default encryption
		rules.S3LifecycleMissingRule{},          // LOW:  bucket without lifecycle rules
		rules.S3LoggingDisabledRule{},           // LOW:  bucket without server access logging
		rules.S3StaleMultipartRule{},            // LOW:  abandoned multipart uploads
		rules.ECRRepoEmptyRule{},                // LOW:  repository holds no images
		rules.ECRUntaggedImagesRule{},           // LOW:  untagged images piling up
	}
}
