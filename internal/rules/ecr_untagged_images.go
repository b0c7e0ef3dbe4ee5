package rules

import (
	"fmt"
	"time"

	"github.com/opsaudit/opsaudit/internal/models"
	"github.com/opsaudit/opsaudit/internal/policy"
)

const (
	ecrUntaggedImagesRuleID = "ECR_UNTAGGED_IMAGES"

	// ecrMaxUntaggedImages tolerates the handful of untagged layers a normal
	// push-over-same-tag workflow leaves behind before flagging the
	// repository for a lifecycle policy.
	ecrMaxUntaggedImages = 10.0
)

// ECRUntaggedImagesRule flags repositories accumulating untagged images
// beyond the threshold. Untagged images are unreachable by tag pulls but
// still billed; repositories with unknown counts are skipped.
type ECRUntaggedImagesRule struct{}

func (r ECRUntaggedImagesRule) ID() string   { return ecrUntaggedImagesRuleID }
func (r ECRUntaggedImagesRule) Name() string { return "Untagged ECR Images" }

// Evaluate returns one LOW finding per repository whose untagged image count
// exceeds max_untagged.
func (r ECRUntaggedImagesRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.Storage == nil {
		return nil
	}
	var findings []models.Finding
	for _, repo := range ctx.Snapshot.Storage.Repositories {
		if !repo.CountsKnown {
			continue
		}
		maxUntagged := policy.GetThreshold(ecrUntaggedImagesRuleID, "max_untagged", ecrMaxUntaggedImages, ctx.Policy)
		if float64(repo.UntaggedCount) <= maxUntagged {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", ecrUntaggedImagesRuleID, repo.Name),
			RuleID:         ecrUntaggedImagesRuleID,
			ResourceID:     repo.Name,
			ResourceType:   models.ResourceECRRepo,
			Region:         repo.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			Severity:       models.SeverityLow,
			Explanation:    fmt.Sprintf("Repository %q has %d untagged images.", repo.Name, repo.UntaggedCount),
			Recommendation: "Add an ECR lifecycle policy that expires untagged images.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"untagged_count": repo.UntaggedCount,
				"image_count":    repo.ImageCount,
			},
		})
	}
	return findings
}
