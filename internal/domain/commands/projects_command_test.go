//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
	builders "github.com/rios0rios0/adoscope/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/adoscope/test/infrastructure/repositorydoubles"
)

func newProjectsCommand(org *doubles.SpyOrganizationRepository) *commands.ProjectsCommand {
	return commands.NewProjectsCommand(
		func(_, _ string, _ repositories.CredentialSource) repositories.OrganizationRepository {
			return org
		},
	)
}

func TestProjectsCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should list projects with their repository counts", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			Projects: []entities.Project{
				{ID: "p1", Name: "P1"},
				{ID: "p2", Name: "P2"},
			},
			ReposByProject: map[string][]entities.Repository{
				"P1": {
					builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository(),
					builders.NewRepositoryBuilder().WithProject("P1").WithName("B").BuildRepository(),
				},
			},
		}
		command := newProjectsCommand(spy)

		// when
		overviews, err := command.Execute(context.Background(), scanSettings())

		// then
		require.NoError(t, err)
		require.Len(t, overviews, 2)
		assert.Equal(t, "P1", overviews[0].Name)
		assert.Equal(t, 2, overviews[0].RepoCount)
		assert.Equal(t, "P2", overviews[1].Name)
		assert.Equal(t, 0, overviews[1].RepoCount)
	})

	t.Run("should mark a row instead of aborting on a listing failure", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			Projects: []entities.Project{
				{ID: "p1", Name: "P1"},
				{ID: "p2", Name: "P2"},
			},
			ReposByProject: map[string][]entities.Repository{
				"P1": {builders.NewRepositoryBuilder().WithProject("P1").WithName("A").BuildRepository()},
			},
			ListReposErr: map[string]error{"P2": errors.New("HTTP 403")},
		}
		command := newProjectsCommand(spy)

		// when
		overviews, err := command.Execute(context.Background(), scanSettings())

		// then
		require.NoError(t, err)
		require.Len(t, overviews, 2)
		assert.False(t, overviews[0].Failed)
		assert.True(t, overviews[1].Failed)
	})

	t.Run("should fail when projects cannot be listed", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyOrganizationRepository{
			ListProjectsErr: errors.New("HTTP 500"),
		}
		command := newProjectsCommand(spy)

		// when
		overviews, err := command.Execute(context.Background(), scanSettings())

		// then
		require.Error(t, err)
		assert.Nil(t, overviews)
		assert.Contains(t, err.Error(), "failed to list projects")
	})
}
