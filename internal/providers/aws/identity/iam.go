package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/opsaudit/opsaudit/internal/models"
)

// collectIAMUsers returns all IAM users in the account with the attributes
// the identity rules need: MFA presence and whether the user has a console
// login profile. The ListUsers paginator handles accounts with many users.
func collectIAMUsers(ctx context.Context, client iamAPIClient) ([]models.IAMUser, error) {
	paginator := iamsvc.NewListUsersPaginator(client, &iamsvc.ListUsersInput{})
	var users []models.IAMUser
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM users: %w", err)
		}
		for _, u := range page.Users {
			userName := aws.ToString(u.UserName)
			user := models.IAMUser{
				UserName:        userName,
				MFAEnabled:      userHasMFA(ctx, client, userName),
				HasLoginProfile: userHasLoginProfile(ctx, client, userName),
			}
			if u.CreateDate != nil {
				user.CreatedAt = *u.CreateDate
			}
			users = append(users, user)
		}
	}
	return users, nil
}

// userHasMFA returns true when the user has at least one MFA device
// registered. Errors are treated as "no MFA" (conservative).
func userHasMFA(ctx context.Context, client iamAPIClient, userName string) bool {
	out, err := client.ListMFADevices(ctx, &iamsvc.ListMFADevicesInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return false
	}
	return len(out.MFADevices) > 0
}

// userHasLoginProfile returns true when the user can sign in to the console.
// GetLoginProfile returns NoSuchEntityException when no login profile exists;
// API-only users have none and should not be flagged for missing MFA.
func userHasLoginProfile(ctx context.Context, client iamAPIClient, userName string) bool {
	_, err := client.GetLoginProfile(ctx, &iamsvc.GetLoginProfileInput{
		UserName: aws.String(userName),
	})
	return err == nil
}

// collectAccessKeys returns every access key of every supplied user.
// Per-user listing failures are skipped so one broken user does not abort
// the whole collection.
func collectAccessKeys(ctx context.Context, client iamAPIClient, users []models.IAMUser) []models.IAMAccessKey {
	var keys []models.IAMAccessKey
	for _, u := range users {
		out, err := client.ListAccessKeys(ctx, &iamsvc.ListAccessKeysInput{
			UserName: aws.String(u.UserName),
		})
		if err != nil {
			continue
		}
		for _, k := range out.AccessKeyMetadata {
			key := models.IAMAccessKey{
				UserName: aws.ToString(k.UserName),
				KeyID:    aws.ToString(k.AccessKeyId),
				Status:   string(k.Status),
			}
			if k.CreateDate != nil {
				key.CreatedAt = *k.CreateDate
			}
			keys = append(keys, key)
		}
	}
	return keys
}

// collectPolicies returns all customer-managed policies together with the
// wildcard analysis of each policy's default version document.
// Document fetch failures leave the wildcard flags false (conservative:
// an unreadable policy is not reported as over-permissive).
func collectPolicies(ctx context.Context, client iamAPIClient) ([]models.IAMPolicy, error) {
	paginator := iamsvc.NewListPoliciesPaginator(client, &iamsvc.ListPoliciesInput{
		Scope: iamtypes.PolicyScopeTypeLocal, // customer-managed only
	})

	var policies []models.IAMPolicy
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM policies: %w", err)
		}
		for _, p := range page.Policies {
			pol := models.IAMPolicy{
				PolicyName:      aws.ToString(p.PolicyName),
				ARN:             aws.ToString(p.Arn),
				AttachmentCount: aws.ToInt32(p.AttachmentCount),
			}
			if p.CreateDate != nil {
				pol.CreatedAt = *p.CreateDate
			}
			pol.WildcardAction, pol.WildcardResource, pol.FullWildcard = policyWildcards(
				ctx, client, pol.ARN, aws.ToString(p.DefaultVersionId))
			policies = append(policies, pol)
		}
	}
	return policies, nil
}

// policyWildcards fetches the default version document for the policy and
// reports its wildcard grants.
func policyWildcards(ctx context.Context, client iamAPIClient, arn, versionID string) (action, resource, full bool) {
	out, err := client.GetPolicyVersion(ctx, &iamsvc.GetPolicyVersionInput{
		PolicyArn: aws.String(arn),
		VersionId: aws.String(versionID),
	})
	if err != nil || out.PolicyVersion == nil || out.PolicyVersion.Document == nil {
		return false, false, false
	}
	return documentWildcards(*out.PolicyVersion.Document)
}

// policyDocument mirrors the subset of the IAM policy grammar the wildcard
// analysis needs. Statement, Action, and Resource each accept both single
// values and arrays in the wire format.
type policyDocument struct {
	Statement jsonList[policyStatement] `json:"Statement"`
}

type policyStatement struct {
	Effect   string           `json:"Effect"`
	Action   jsonList[string] `json:"Action"`
	Resource jsonList[string] `json:"Resource"`
}

// jsonList unmarshals either a single JSON value or an array of values.
type jsonList[T any] []T

func (l *jsonList[T]) UnmarshalJSON(data []byte) error {
	var many []T
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = []T{one}
	return nil
}

// documentWildcards parses a URL-encoded policy document and reports its
// wildcard grants. action and resource are ORed across Allow statements;
// full is true only when a single Allow statement grants both Action "*"
// and Resource "*", since the combination is what makes a policy
// unrestricted. Wildcards split across statements do not set full.
func documentWildcards(encoded string) (action, resource, full bool) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return false, false, false
	}
	var doc policyDocument
	if err := json.Unmarshal([]byte(decoded), &doc); err != nil {
		return false, false, false
	}
	for _, stmt := range doc.Statement {
		if stmt.Effect != "Allow" {
			continue
		}
		var stmtAction, stmtResource bool
		for _, a := range stmt.Action {
			if a == "*" {
				stmtAction = true
			}
		}
		for _, r := range stmt.Resource {
			if r == "*" {
				stmtResource = true
			}
		}
		action = action || stmtAction
		resource = resource || stmtResource
		full = full || (stmtAction && stmtResource)
	}
	return action, resource, full
}

// collectRoles returns all IAM roles with their last-used timestamps.
// ListRoles does not populate RoleLastUsed, so each role is enriched with a
// GetRole call; enrichment failures leave LastUsedAt nil.
func collectRoles(ctx context.Context, client iamAPIClient) ([]models.IAMRole, error) {
	paginator := iamsvc.NewListRolesPaginator(client, &iamsvc.ListRolesInput{})
	var roles []models.IAMRole
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM roles: %w", err)
		}
		for _, r := range page.Roles {
			role := models.IAMRole{
				RoleName: aws.ToString(r.RoleName),
				ARN:      aws.ToString(r.Arn),
			}
			if r.CreateDate != nil {
				role.CreatedAt = *r.CreateDate
			}
			role.LastUsedAt = roleLastUsed(ctx, client, role.RoleName)
			roles = append(roles, role)
		}
	}
	return roles, nil
}

// roleLastUsed fetches RoleLastUsed for the named role. Nil means the role
// has never been used or the lookup failed.
func roleLastUsed(ctx context.Context, client iamAPIClient, roleName string) *time.Time {
	out, err := client.GetRole(ctx, &iamsvc.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil || out.Role == nil || out.Role.RoleLastUsed == nil {
		return nil
	}
	return out.Role.RoleLastUsed.LastUsedDate
}
