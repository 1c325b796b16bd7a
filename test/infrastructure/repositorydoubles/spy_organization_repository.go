//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock
// frameworks. Unlike most spies these are safe for concurrent use, because
// the scan pipeline calls repositories from bounded worker pools.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

// SpyOrganizationRepository implements repositories.OrganizationRepository
// as a configurable spy. Configure the response fields for the methods your
// test exercises, then inspect the call-tracking fields to verify behavior.
// Map keys are project names for project-scoped methods and repository
// names for repository-scoped ones.
type SpyOrganizationRepository struct {
	mu sync.Mutex

	// --- CheckConnection ---
	ConnectedAs   string
	ConnectionErr error

	// --- ListProjects ---
	Projects        []entities.Project
	ListProjectsErr error

	// --- ListRepositories ---
	ReposByProject map[string][]entities.Repository
	ListReposErr   map[string]error
	// spy: project names requested
	ListedProjects []string

	// --- EarliestCommit ---
	Commits     map[string]*entities.CommitRecord
	EarliestErr map[string]error
	// spy: repository names requested
	EarliestRepos []string

	// --- rollup counters ---
	WorkItems     map[string]int
	PullRequests  map[string]int
	Pipelines     map[string]int
	PipelineRepos map[string][]string
	Hooks         map[string]int
	Consumers     map[string][]string
	Teams         map[string]int

	// --- HasAdvancedSecurity / CountAlerts ---
	AdvancedSecurity bool
	Alerts           map[string]map[repositories.AlertType]int

	// --- ListUsers ---
	Users        []entities.UserRecord
	ListUsersErr error
}

var _ repositories.OrganizationRepository = (*SpyOrganizationRepository)(nil)

func (s *SpyOrganizationRepository) CheckConnection(_ context.Context) (string, error) {
	return s.ConnectedAs, s.ConnectionErr
}

func (s *SpyOrganizationRepository) ListProjects(_ context.Context) ([]entities.Project, error) {
	return s.Projects, s.ListProjectsErr
}

func (s *SpyOrganizationRepository) ListRepositories(
	_ context.Context,
	project entities.Project,
) ([]entities.Repository, error) {
	s.mu.Lock()
	s.ListedProjects = append(s.ListedProjects, project.Name)
	s.mu.Unlock()

	if err, ok := s.ListReposErr[project.Name]; ok {
		return nil, err
	}
	return s.ReposByProject[project.Name], nil
}

func (s *SpyOrganizationRepository) EarliestCommit(
	_ context.Context,
	repo entities.Repository,
) (*entities.CommitRecord, error) {
	s.mu.Lock()
	s.EarliestRepos = append(s.EarliestRepos, repo.Name)
	s.mu.Unlock()

	if err, ok := s.EarliestErr[repo.Name]; ok {
		return nil, err
	}
	commit, ok := s.Commits[repo.Name]
	if !ok {
		return nil, nil //nolint:nilnil // no history is not an error
	}
	// The caller owns MergeIndex; mirror what the live repository does.
	record := *commit
	record.MergeIndex = repo.MergeIndex
	return &record, nil
}

func (s *SpyOrganizationRepository) CountWorkItems(_ context.Context, project entities.Project) int {
	return s.WorkItems[project.Name]
}

func (s *SpyOrganizationRepository) CountPullRequests(_ context.Context, repo entities.Repository) int {
	return s.PullRequests[repo.Name]
}

func (s *SpyOrganizationRepository) BuildDefinitions(
	_ context.Context,
	project entities.Project,
) (int, []string) {
	return s.Pipelines[project.Name], s.PipelineRepos[project.Name]
}

func (s *SpyOrganizationRepository) ServiceHooks(
	_ context.Context,
	project entities.Project,
) (int, []string) {
	return s.Hooks[project.Name], s.Consumers[project.Name]
}

func (s *SpyOrganizationRepository) CountTeams(_ context.Context, project entities.Project) int {
	return s.Teams[project.Name]
}

func (s *SpyOrganizationRepository) HasAdvancedSecurity(_ context.Context) bool {
	return s.AdvancedSecurity
}

func (s *SpyOrganizationRepository) CountAlerts(
	_ context.Context,
	repo entities.Repository,
	alertType repositories.AlertType,
) int {
	return s.Alerts[repo.Name][alertType]
}

func (s *SpyOrganizationRepository) ListUsers(_ context.Context) ([]entities.UserRecord, error) {
	return s.Users, s.ListUsersErr
}
