package repositories

import (
	"context"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// AlertType selects one of the security alert categories queried per
// repository when the Advanced Security capability is enabled.
type AlertType string

const (
	AlertTypeSecret     AlertType = "secret"
	AlertTypeDependency AlertType = "dependency"
	AlertTypeCode       AlertType = "code"
)

// OrganizationRepository abstracts the organization's REST surface. Listing
// methods return errors so the collector can skip failed units; counting
// methods are total functions that return zero on any failure, matching the
// safe-count contract every rollup is built on.
type OrganizationRepository interface {
	// CheckConnection performs the one fatal connectivity probe. On success
	// it returns the authenticated user's display name.
	CheckConnection(ctx context.Context) (string, error)

	// ListProjects enumerates the organization's projects in API order,
	// following continuation tokens. Empty-named projects are dropped.
	ListProjects(ctx context.Context) ([]entities.Project, error)

	// ListRepositories enumerates one project's repositories in API order,
	// tagged with the project name.
	ListRepositories(ctx context.Context, project entities.Project) ([]entities.Repository, error)

	// EarliestCommit fetches the single oldest commit of a repository.
	// It returns nil without error when the repository has no history.
	EarliestCommit(ctx context.Context, repo entities.Repository) (*entities.CommitRecord, error)

	// CountWorkItems counts a project's work items via a WIQL query.
	CountWorkItems(ctx context.Context, project entities.Project) int

	// CountPullRequests counts all pull requests of one repository.
	CountPullRequests(ctx context.Context, repo entities.Repository) int

	// BuildDefinitions returns a project's pipeline definition count and the
	// IDs of the distinct repositories those definitions reference.
	BuildDefinitions(ctx context.Context, project entities.Project) (int, []string)

	// ServiceHooks returns a project's hook subscription count and the
	// distinct consumer types of those subscriptions.
	ServiceHooks(ctx context.Context, project entities.Project) (int, []string)

	// CountTeams counts a project's teams.
	CountTeams(ctx context.Context, project entities.Project) int

	// HasAdvancedSecurity probes whether the paid security-scanning
	// capability is enabled for the organization.
	HasAdvancedSecurity(ctx context.Context) bool

	// CountAlerts counts active security alerts of one category for a
	// repository.
	CountAlerts(ctx context.Context, repo entities.Repository, alertType AlertType) int

	// ListUsers enumerates the organization's user entitlements.
	ListUsers(ctx context.Context) ([]entities.UserRecord, error)
}

// OrganizationRepositoryFactory builds an OrganizationRepository once the
// organization name, auth scheme and credential are resolved at run time.
type OrganizationRepositoryFactory func(organization string, scheme string, creds CredentialSource) OrganizationRepository
