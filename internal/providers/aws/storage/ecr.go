package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ecrsvc "github.com/aws/aws-sdk-go-v2/service/ecr"

	"github.com/opsaudit/opsaudit/internal/models"
)

// collectECRRepositories returns all ECR repositories in region with their
// total and untagged image counts. Image counting failures leave both counts
// at zero; the emptiness rule skips repositories whose count could not be
// read by checking countsKnown.
func collectECRRepositories(ctx context.Context, client ecrAPIClient, region string) ([]models.ECRRepository, error) {
	paginator := ecrsvc.NewDescribeRepositoriesPaginator(client, &ecrsvc.DescribeRepositoriesInput{})

	var repos []models.ECRRepository
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe ECR repositories: %w", err)
		}
		for _, r := range page.Repositories {
			repo := models.ECRRepository{
				Name:   aws.ToString(r.RepositoryName),
				Region: region,
			}
			repo.ImageCount, repo.UntaggedCount, repo.CountsKnown = countImages(ctx, client, repo.Name)
			repos = append(repos, repo)
		}
	}
	return repos, nil
}

// countImages pages through a repository's images and returns
// (total, untagged, ok). ok is false when the listing fails, so an
// unreadable repository is never mistaken for an empty one.
func countImages(ctx context.Context, client ecrAPIClient, repoName string) (total, untagged int, ok bool) {
	paginator := ecrsvc.NewDescribeImagesPaginator(client, &ecrsvc.DescribeImagesInput{
		RepositoryName: aws.String(repoName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, 0, false
		}
		for _, img := range page.ImageDetails {
			total++
			if len(img.ImageTags) == 0 {
				untagged++
			}
		}
	}
	return total, untagged, true
}
