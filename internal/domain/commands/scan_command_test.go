//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	humanize "github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
	builders "github.com/rios0rios0/adoscope/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/adoscope/test/infrastructure/repositorydoubles"
)

func newScanCommand(
	org *doubles.SpyOrganizationRepository,
	deep *doubles.StubDeepScanRepository,
) *commands.ScanCommand {
	return commands.NewScanCommand(
		func(_, _ string, _ repositories.CredentialSource) repositories.OrganizationRepository {
			return org
		},
		func(_ repositories.CredentialSource) repositories.DeepScanRepository {
			return deep
		},
	)
}

func scanSettings() *entities.Settings {
	settings := &entities.Settings{
		Organization: "contoso",
		Token:        "pat",
	}
	settings.ApplyDefaults()
	return settings
}

func TestScanCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should assemble a full report on the happy path", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects: []entities.Project{
				{ID: "p1", Name: "P1"},
				{ID: "p2", Name: "P2"},
			},
			ReposByProject: map[string][]entities.Repository{
				"P1": {
					builders.NewRepositoryBuilder().WithProject("P1").WithName("A").WithSize(2 * humanize.GiByte).BuildRepository(),
					builders.NewRepositoryBuilder().WithProject("P1").WithName("B").WithSize(500 * humanize.MiByte).BuildRepository(),
				},
				"P2": {
					builders.NewRepositoryBuilder().WithProject("P2").WithName("C").WithSize(2 * humanize.GiByte).BuildRepository(),
				},
			},
			Commits: map[string]*entities.CommitRecord{
				"A": {Project: "P1", Repo: "A", Date: "2020-01-01T00:00:00Z", CommitID: "aaa"},
				"B": {Project: "P1", Repo: "B", Date: "2019-06-01T00:00:00Z", CommitID: "bbb"},
			},
			WorkItems:     map[string]int{"P1": 10, "P2": 5},
			PullRequests:  map[string]int{"A": 3, "B": 1, "C": 2},
			Pipelines:     map[string]int{"P1": 3},
			PipelineRepos: map[string][]string{"P1": {"id-a", "id-b"}},
			Hooks:         map[string]int{"P1": 2, "P2": 1},
			Consumers:     map[string][]string{"P1": {"webHooks"}, "P2": {"slack", "webHooks"}},
			Teams:         map[string]int{"P1": 1},
			Users: []entities.UserRecord{
				{DisplayName: "Jane", PrincipalName: "jane@contoso.com", License: "basic"},
				{DisplayName: "John", PrincipalName: "john@contoso.com", License: "stakeholder"},
			},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, "contoso", report.Organization)
		assert.Equal(t, "jane@contoso.com", report.ConnectedAs)
		assert.Equal(t, 2, report.ProjectCount)
		assert.Equal(t, 3, report.RepoCount)

		// merged sequence keeps concatenated per-project API order
		require.Len(t, report.Repositories, 3)
		assert.Equal(t, "A", report.Repositories[0].Name)
		assert.Equal(t, "B", report.Repositories[1].Name)
		assert.Equal(t, "C", report.Repositories[2].Name)

		// size metrics: A and C pass the 1 GiB filter, A wins the tie
		assert.Equal(t, 2, report.LargeRepoCount)
		require.Len(t, report.LargeRepositories, 2)
		assert.Equal(t, "A", report.LargeRepositories[0].Name)
		assert.Equal(t, "C", report.LargeRepositories[1].Name)
		require.NotNil(t, report.LargestRepository)
		assert.Equal(t, "A", report.LargestRepository.Name)

		// age metrics: B is oldest, C has no history and is excluded
		require.NotNil(t, report.OldestRepository)
		assert.Equal(t, "B", report.OldestRepository.Repo)
		require.Len(t, report.CommitRanking, 2)
		assert.Equal(t, "B", report.CommitRanking[0].Repo)

		// rollups
		assert.Equal(t, 15, report.Rollups.WorkItems)
		assert.Equal(t, 6, report.Rollups.PullRequests)
		assert.Equal(t, 3, report.Rollups.Pipelines)
		assert.Equal(t, 2, report.Rollups.ReposWithPipelines)
		assert.Equal(t, 3, report.Rollups.ServiceHooks)
		assert.Equal(t, 1, report.Rollups.Teams)
		assert.Equal(t, 1, report.Rollups.ProjectsWithTeams)
		assert.False(t, report.Rollups.AdvancedSecurityEnabled)
		assert.Equal(t, []string{"slack", "webHooks"}, report.HookConsumerTypes)

		assert.Equal(t, 2, report.UserCount)
		assert.Nil(t, report.DeepScan)
		assert.Equal(t, 0, report.Warnings)
		assert.False(t, report.Incomplete)
		assert.False(t, report.GeneratedAt.IsZero())
	})

	t.Run("should fail when the organization is unreachable", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectionErr: errors.New("HTTP 401"),
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.Error(t, err)
		assert.Nil(t, report)
		assert.Contains(t, err.Error(), "cannot reach organization")
	})

	t.Run("should fail when projects cannot be listed", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs:     "jane@contoso.com",
			ListProjectsErr: errors.New("HTTP 500"),
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.Error(t, err)
		assert.Nil(t, report)
		assert.Contains(t, err.Error(), "failed to list projects")
	})

	t.Run("should return an empty report when there are no projects", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{ConnectedAs: "jane@contoso.com"}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, report.ProjectCount)
		assert.Equal(t, 0, report.RepoCount)
		assert.NotNil(t, report.Repositories)
		assert.Nil(t, report.LargestRepository)
		assert.Nil(t, report.OldestRepository)
		assert.False(t, report.Incomplete)
	})

	t.Run("should skip a failed project and keep scanning the rest", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects: []entities.Project{
				{ID: "p1", Name: "P1"},
				{ID: "p2", Name: "P2"},
			},
			ReposByProject: map[string][]entities.Repository{
				"P1": {builders.NewRepositoryBuilder().WithProject("P1").WithName("A").WithSize(humanize.MiByte).BuildRepository()},
			},
			ListReposErr: map[string]error{"P2": errors.New("HTTP 403")},
			WorkItems:    map[string]int{"P1": 7, "P2": 99},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, report.ProjectCount)
		assert.Equal(t, 1, report.RepoCount)
		assert.Equal(t, []string{"P2"}, report.SkippedProjects)
		assert.Equal(t, 1, report.Warnings)
		// the skipped project contributes nothing to the rollups
		assert.Equal(t, 7, report.Rollups.WorkItems)
		assert.False(t, report.Incomplete)
	})

	t.Run("should treat missing commit history as no data, not a warning", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
			ReposByProject: map[string][]entities.Repository{
				"P1": {builders.NewRepositoryBuilder().WithProject("P1").WithName("empty").BuildRepository()},
			},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Nil(t, report.OldestRepository)
		assert.Empty(t, report.CommitRanking)
		assert.Equal(t, 0, report.Warnings)
	})

	t.Run("should warn when an earliest commit fetch fails", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
			ReposByProject: map[string][]entities.Repository{
				"P1": {
					builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository(),
					builders.NewRepositoryBuilder().WithProject("P1").WithName("B").BuildRepository(),
				},
			},
			Commits: map[string]*entities.CommitRecord{
				"A": {Project: "P1", Repo: "A", Date: "2020-01-01T00:00:00Z", CommitID: "aaa"},
			},
			EarliestErr: map[string]error{"B": errors.New("HTTP 500")},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, report.Warnings)
		require.NotNil(t, report.OldestRepository)
		assert.Equal(t, "A", report.OldestRepository.Repo)
	})

	t.Run("should restrict the scan to the filtered project", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects: []entities.Project{
				{ID: "p1", Name: "P1"},
				{ID: "p2", Name: "P2"},
			},
			ReposByProject: map[string][]entities.Repository{
				"P1": {builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository()},
				"P2": {builders.NewRepositoryBuilder().WithProject("P2").WithName("C").BuildRepository()},
			},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{ProjectFilter: "P2"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"P2"}, spy.ListedProjects)
		assert.Equal(t, 1, report.ProjectCount)
		assert.Equal(t, "C", report.Repositories[0].Name)
	})

	t.Run("should return an empty report when the filter matches nothing", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{ProjectFilter: "P9"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, report.ProjectCount)
		assert.Empty(t, spy.ListedProjects)
	})

	t.Run("should skip alert counting without the capability", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
			ReposByProject: map[string][]entities.Repository{
				"P1": {builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository()},
			},
			AdvancedSecurity: false,
			Alerts: map[string]map[repositories.AlertType]int{
				"A": {repositories.AlertTypeSecret: 5},
			},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.False(t, report.Rollups.AdvancedSecurityEnabled)
		assert.Equal(t, 0, report.Rollups.SecretAlerts)
		assert.Equal(t, 0, report.Rollups.ReposWithAlerts)
	})

	t.Run("should count alerts per category when the capability is enabled", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
			ReposByProject: map[string][]entities.Repository{
				"P1": {
					builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository(),
					builders.NewRepositoryBuilder().WithProject("P1").WithName("clean").BuildRepository(),
				},
			},
			AdvancedSecurity: true,
			Alerts: map[string]map[repositories.AlertType]int{
				"A": {
					repositories.AlertTypeSecret:     2,
					repositories.AlertTypeDependency: 1,
				},
			},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.True(t, report.Rollups.AdvancedSecurityEnabled)
		assert.Equal(t, 2, report.Rollups.SecretAlerts)
		assert.Equal(t, 1, report.Rollups.DependencyAlerts)
		assert.Equal(t, 0, report.Rollups.CodeAlerts)
		assert.Equal(t, 1, report.Rollups.ReposWithAlerts)
	})

	t.Run("should warn when user listing fails", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs:  "jane@contoso.com",
			Projects:     []entities.Project{{ID: "p1", Name: "P1"}},
			ListUsersErr: errors.New("HTTP 500"),
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, report.UserCount)
		assert.Equal(t, 1, report.Warnings)
	})

	t.Run("should run the deep scan when requested", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
			ReposByProject: map[string][]entities.Repository{
				"P1": {
					builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository(),
					builders.NewRepositoryBuilder().WithProject("P1").WithName("B").BuildRepository(),
				},
			},
		}
		deep := &doubles.StubDeepScanRepository{
			RecordsByRepo: map[string][]entities.LargeBlobRecord{
				"A": {
					{Project: "P1", Repo: "A", Path: "assets/video.mp4", SizeBytes: 120 * humanize.MiByte, SizeMB: 120},
					{Project: "P1", Repo: "A", Path: "data/dump.sql", SizeBytes: 60 * humanize.MiByte, SizeMB: 60},
				},
			},
			ErrByRepo: map[string]error{"B": errors.New("authentication required")},
		}
		command := newScanCommand(spy, deep)

		// when
		report, err := command.Execute(context.Background(), scanSettings(), commands.ScanOptions{DeepScan: true})

		// then
		require.NoError(t, err)
		require.NotNil(t, report.DeepScan)
		assert.InDelta(t, entities.DefaultLargeBlobMB, report.DeepScan.ThresholdMB, 0.0001)
		assert.Equal(t, 2, report.DeepScan.TotalLargeFiles)
		assert.Equal(t, []string{"P1/B"}, report.DeepScan.FailedClones)
		assert.Equal(t, 1, report.Warnings)
		assert.ElementsMatch(t, []string{"A", "B"}, deep.ScannedRepos)
		require.NotEmpty(t, deep.Thresholds)
		assert.Equal(t, entities.MBToBytes(entities.DefaultLargeBlobMB), deep.Thresholds[0])
	})

	t.Run("should honor threshold overrides from options", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
			ReposByProject: map[string][]entities.Repository{
				"P1": {builders.NewRepositoryBuilder().WithProject("P1").WithName("A").WithSize(600 * humanize.MiByte).BuildRepository()},
			},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})
		opts := commands.ScanOptions{LargeRepoGiB: 0.5}

		// when
		report, err := command.Execute(context.Background(), scanSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, report.LargeRepoCount)
	})

	t.Run("should mark the report incomplete when canceled", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ConnectedAs: "jane@contoso.com",
			Projects:    []entities.Project{{ID: "p1", Name: "P1"}},
			ReposByProject: map[string][]entities.Repository{
				"P1": {builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository()},
			},
		}
		command := newScanCommand(spy, &doubles.StubDeepScanRepository{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		report, err := command.Execute(ctx, scanSettings(), commands.ScanOptions{})

		// then
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.True(t, report.Incomplete)
		assert.Contains(t, report.IncompleteReason, "interrupted")
		// canceled collection units degrade to skipped projects
		assert.Equal(t, []string{"P1"}, report.SkippedProjects)
		assert.Positive(t, report.Warnings)
	})
}

func TestEffectiveConcurrency(t *testing.T) {
	t.Parallel()

	t.Run("should prefer the option override", func(t *testing.T) {
		t.Parallel()

		// given
		settings := &entities.Settings{Concurrency: 8}
		opts := commands.ScanOptions{Concurrency: 2}

		// then
		assert.Equal(t, 2, commands.EffectiveConcurrency(settings, opts))
	})

	t.Run("should fall back to the default for nonpositive values", func(t *testing.T) {
		t.Parallel()

		// given
		settings := &entities.Settings{Concurrency: 0}

		// then
		assert.Equal(t, entities.DefaultConcurrency, commands.EffectiveConcurrency(settings, commands.ScanOptions{}))
	})

	t.Run("should clamp to the maximum", func(t *testing.T) {
		t.Parallel()

		// given
		settings := &entities.Settings{Concurrency: 8}
		opts := commands.ScanOptions{Concurrency: 1000}

		// then
		assert.Equal(t, entities.MaxConcurrency, commands.EffectiveConcurrency(settings, opts))
	})
}

func TestFilterProjects(t *testing.T) {
	t.Parallel()

	t.Run("should pass everything through without a filter", func(t *testing.T) {
		t.Parallel()

		// given
		projects := []entities.Project{{Name: "P1"}, {Name: "P2"}}

		// when
		out := commands.FilterProjects(projects, "")

		// then
		assert.Len(t, out, 2)
	})

	t.Run("should match on the exact name", func(t *testing.T) {
		t.Parallel()

		// given
		projects := []entities.Project{{Name: "P1"}, {Name: "P2"}}

		// when
		out := commands.FilterProjects(projects, "P1")

		// then
		require.Len(t, out, 1)
		assert.Equal(t, "P1", out[0].Name)
	})
}
