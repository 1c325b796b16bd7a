package devops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

const (
	entitlementPageSize = 500
	// maxEntitlementPages caps the body-token pagination loop in case the
	// service keeps returning tokens.
	maxEntitlementPages = 40
)

// DevOpsOrganizationRepository implements repositories.OrganizationRepository
// against the Azure DevOps REST API. Listing methods return errors so the
// collector can skip failed units; counting methods go through the safe-count
// helpers and return zero on any failure.
type DevOpsOrganizationRepository struct {
	client *Client
}

// NewDevOpsOrganizationRepository creates a repository for one organization.
func NewDevOpsOrganizationRepository(
	organization, scheme string,
	creds repositories.CredentialSource,
) repositories.OrganizationRepository {
	return &DevOpsOrganizationRepository{
		client: NewClient(organization, scheme, creds),
	}
}

// NewDevOpsOrganizationRepositoryWithClient wires an existing client; used
// by tests to point at local servers.
func NewDevOpsOrganizationRepositoryWithClient(client *Client) repositories.OrganizationRepository {
	return &DevOpsOrganizationRepository{client: client}
}

// CheckConnection performs the single fatal connectivity probe and returns
// the authenticated user's display name.
func (r *DevOpsOrganizationRepository) CheckConnection(ctx context.Context) (string, error) {
	res := r.client.Get(ctx, r.client.OrgURL("/_apis/connectionData?api-version="+apiVersion))
	if res.Failed() {
		return "", fmt.Errorf("connectivity probe failed: %w", res.Err)
	}
	return entities.SafeString(res, "authenticatedUser.providerDisplayName"), nil
}

// ListProjects enumerates all projects, following the continuation token
// header across pages. Projects without a name are dropped.
func (r *DevOpsOrganizationRepository) ListProjects(ctx context.Context) ([]entities.Project, error) {
	var all []entities.Project
	continuationToken := ""

	for {
		endpoint := r.client.OrgURL("/_apis/projects?api-version=" + apiVersion)
		if continuationToken != "" {
			endpoint += "&continuationToken=" + url.QueryEscape(continuationToken)
		}

		res, next := r.client.GetWithContinuation(ctx, endpoint)
		if res.Failed() {
			return nil, fmt.Errorf("failed to list projects: %w", res.Err)
		}

		var result struct {
			Value []entities.Project `json:"value"`
			Count int                `json:"count"`
		}
		if err := json.Unmarshal(res.Body, &result); err != nil {
			return nil, fmt.Errorf("failed to parse projects response: %w", err)
		}

		for _, project := range result.Value {
			if project.Name == "" {
				continue
			}
			all = append(all, project)
		}

		continuationToken = next
		if continuationToken == "" {
			break
		}
	}

	return all, nil
}

// ListRepositories enumerates one project's repositories in API order.
func (r *DevOpsOrganizationRepository) ListRepositories(
	ctx context.Context,
	project entities.Project,
) ([]entities.Repository, error) {
	endpoint := r.client.OrgURL(fmt.Sprintf(
		"/%s/_apis/git/repositories?api-version=%s",
		escapeSegment(project.Name), apiVersion,
	))

	res := r.client.Get(ctx, endpoint)
	if res.Failed() {
		return nil, fmt.Errorf("failed to list repositories in %q: %w", project.Name, res.Err)
	}

	var result struct {
		Value []struct {
			ID            string  `json:"id"`
			Name          string  `json:"name"`
			Size          *uint64 `json:"size"`
			DefaultBranch string  `json:"defaultBranch"`
			RemoteURL     string  `json:"remoteUrl"`
		} `json:"value"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(res.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse repositories response: %w", err)
	}

	repos := make([]entities.Repository, 0, len(result.Value))
	for _, raw := range result.Value {
		repos = append(repos, entities.Repository{
			Project:       project.Name,
			Name:          raw.Name,
			ID:            raw.ID,
			SizeBytes:     raw.Size,
			DefaultBranch: raw.DefaultBranch,
			RemoteURL:     raw.RemoteURL,
		})
	}

	return repos, nil
}

// EarliestCommit asks for the single oldest commit of a repository. It
// returns nil without error when the repository has no history or the commit
// date does not parse.
func (r *DevOpsOrganizationRepository) EarliestCommit(
	ctx context.Context,
	repo entities.Repository,
) (*entities.CommitRecord, error) {
	endpoint := r.client.OrgURL(fmt.Sprintf(
		"/%s/_apis/git/repositories/%s/commits"+
			"?searchCriteria.showOldestCommitsFirst=true&searchCriteria.$top=1&api-version=%s",
		escapeSegment(repo.Project), escapeSegment(repo.ID), apiVersion,
	))

	res := r.client.Get(ctx, endpoint)
	if res.Failed() {
		return nil, fmt.Errorf("failed to fetch commits for %s/%s: %w", repo.Project, repo.Name, res.Err)
	}

	commitID := entities.SafeString(res, "value.0.commitId")
	if commitID == "" {
		return nil, nil
	}

	date, ok := entities.NormalizeCommitDate(entities.SafeString(res, "value.0.author.date"))
	if !ok {
		return nil, nil
	}

	return &entities.CommitRecord{
		Project:    repo.Project,
		Repo:       repo.Name,
		RepoID:     repo.ID,
		Date:       date,
		CommitID:   commitID,
		MergeIndex: repo.MergeIndex,
	}, nil
}

// CountWorkItems counts a project's work items through a WIQL query.
func (r *DevOpsOrganizationRepository) CountWorkItems(ctx context.Context, project entities.Project) int {
	endpoint := r.client.OrgURL(fmt.Sprintf(
		"/%s/_apis/wit/wiql?api-version=%s",
		escapeSegment(project.Name), apiVersion,
	))

	res := r.client.Post(ctx, endpoint, map[string]string{
		"query": "Select [System.Id] From WorkItems",
	})
	return entities.SafeCount(res, "workItems.#")
}

// CountPullRequests counts all pull requests of one repository, any status.
func (r *DevOpsOrganizationRepository) CountPullRequests(ctx context.Context, repo entities.Repository) int {
	endpoint := r.client.OrgURL(fmt.Sprintf(
		"/%s/_apis/git/repositories/%s/pullrequests?searchCriteria.status=all&api-version=%s",
		escapeSegment(repo.Project), escapeSegment(repo.ID), apiVersion,
	))
	return entities.SafeCount(r.client.Get(ctx, endpoint), "count")
}

// BuildDefinitions returns a project's pipeline definition count and the
// distinct repository IDs those definitions reference.
func (r *DevOpsOrganizationRepository) BuildDefinitions(
	ctx context.Context,
	project entities.Project,
) (int, []string) {
	endpoint := r.client.OrgURL(fmt.Sprintf(
		"/%s/_apis/build/definitions?includeAllProperties=true&api-version=%s",
		escapeSegment(project.Name), apiVersion,
	))

	res := r.client.Get(ctx, endpoint)
	count := entities.SafeCount(res, "count")
	return count, dedupeStrings(entities.SafeStrings(res, "value.#.repository.id"))
}

// ServiceHooks returns a project's hook subscription count and the distinct
// consumer types among them, via the filtered subscriptions query.
func (r *DevOpsOrganizationRepository) ServiceHooks(
	ctx context.Context,
	project entities.Project,
) (int, []string) {
	endpoint := r.client.OrgURL("/_apis/hooks/subscriptionsquery?api-version=" + apiVersion)
	body := map[string]any{
		"publisherInputFilters": []map[string]any{
			{
				"conditions": []map[string]string{
					{"inputId": "projectId", "inputValue": project.ID},
				},
			},
		},
	}

	res := r.client.Post(ctx, endpoint, body)
	count := entities.SafeCount(res, "results.#")
	return count, dedupeStrings(entities.SafeStrings(res, "results.#.consumerId"))
}

// CountTeams counts a project's teams.
func (r *DevOpsOrganizationRepository) CountTeams(ctx context.Context, project entities.Project) int {
	endpoint := r.client.OrgURL(fmt.Sprintf(
		"/_apis/projects/%s/teams?api-version=%s",
		escapeSegment(project.ID), apiVersion,
	))
	return entities.SafeCount(r.client.Get(ctx, endpoint), "count")
}

// HasAdvancedSecurity probes whether the paid security-scanning capability
// answers at all for this organization.
func (r *DevOpsOrganizationRepository) HasAdvancedSecurity(ctx context.Context) bool {
	endpoint := r.client.AdvsecURL("/_apis/management/enablement?api-version=" + alertsAPIVersion)
	return !r.client.Get(ctx, endpoint).Failed()
}

// CountAlerts counts active alerts of one category for a repository.
func (r *DevOpsOrganizationRepository) CountAlerts(
	ctx context.Context,
	repo entities.Repository,
	alertType repositories.AlertType,
) int {
	endpoint := r.client.AdvsecURL(fmt.Sprintf(
		"/%s/_apis/alert/repositories/%s/alerts?criteria.alertType=%s&criteria.states=active&api-version=%s",
		escapeSegment(repo.Project), escapeSegment(repo.ID), alertType, alertsAPIVersion,
	))
	return entities.SafeCount(r.client.Get(ctx, endpoint), "count")
}

// ListUsers enumerates the organization's user entitlements, following the
// body continuation token across pages.
func (r *DevOpsOrganizationRepository) ListUsers(ctx context.Context) ([]entities.UserRecord, error) {
	var users []entities.UserRecord
	continuationToken := ""

	for page := 0; page < maxEntitlementPages; page++ {
		endpoint := r.client.VsaexURL(fmt.Sprintf(
			"/_apis/userentitlements?top=%d&api-version=%s",
			entitlementPageSize, entitlementsAPIVersion,
		))
		if continuationToken != "" {
			endpoint += "&continuationToken=" + url.QueryEscape(continuationToken)
		}

		res := r.client.Get(ctx, endpoint)
		if res.Failed() {
			return nil, fmt.Errorf("failed to list user entitlements: %w", res.Err)
		}

		var result struct {
			Members []struct {
				User struct {
					DisplayName   string `json:"displayName"`
					PrincipalName string `json:"principalName"`
				} `json:"user"`
				AccessLevel struct {
					LicenseDisplayName string `json:"licenseDisplayName"`
				} `json:"accessLevel"`
			} `json:"members"`
			ContinuationToken string `json:"continuationToken"`
		}
		if err := json.Unmarshal(res.Body, &result); err != nil {
			return nil, fmt.Errorf("failed to parse entitlements response: %w", err)
		}

		for _, member := range result.Members {
			users = append(users, entities.UserRecord{
				DisplayName:   member.User.DisplayName,
				PrincipalName: member.User.PrincipalName,
				License:       member.AccessLevel.LicenseDisplayName,
			})
		}

		continuationToken = result.ContinuationToken
		if continuationToken == "" {
			break
		}
	}

	return users, nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
