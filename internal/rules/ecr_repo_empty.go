package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
)

// ECRRepoEmptyRule flags ECR repositories that contain no images at all.
// Repositories whose image counts could not be listed are skipped, so an
// API failure never masquerades as an empty repository.
type ECRRepoEmptyRule struct{}

func (r ECRRepoEmptyRule) ID() string   { return "ECR_REPO_EMPTY" }
func (r ECRRepoEmptyRule) Name() string { return "Empty ECR Repository" }

// Evaluate returns one LOW finding per repository with a confirmed image
// count of zero.
func (r ECRRepoEmptyRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Storage == nil {
		return nil
	}
	var findings []models.Finding
	for _, repo := range ctx.Snapshot.Storage.Repositories {
		if !repo.CountsKnown {
			continue // image listing failed; unknown is not empty
		}
		if repo.ImageCount != 0 {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), repo.Name),
			RuleID:         r.ID(),
			ResourceID:     repo.Name,
			ResourceType:   models.ResourceECRRepo,
			Region:         repo.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Repository %q contains no images.", repo.Name),
			Recommendation: "Delete the repository if the image pipeline that fed it is gone.",
			DetectedAt:     time.Now().UTC(),
		})
	}
	return findings
}
