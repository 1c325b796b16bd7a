package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/adoscope/internal/infrastructure/repositories"
)

// Projects is the interface for the projects listing command.
type Projects interface {
	Execute(ctx context.Context, settings *entities.Settings) ([]ProjectOverview, error)
}

// ProjectOverview is one row of the projects listing.
type ProjectOverview struct {
	Name      string
	ID        string
	RepoCount int
	Failed    bool
}

// ProjectsCommand lists the organization's projects with their repository
// counts. It is the quick pre-flight check before a full scan.
type ProjectsCommand struct {
	organizations repositories.OrganizationRepositoryFactory
}

// NewProjectsCommand creates a new ProjectsCommand.
func NewProjectsCommand(organizations repositories.OrganizationRepositoryFactory) *ProjectsCommand {
	return &ProjectsCommand{organizations: organizations}
}

// Execute lists projects and counts each one's repositories through the
// bounded pool. A failed repository listing marks the row instead of
// aborting the command.
func (it *ProjectsCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
) ([]ProjectOverview, error) {
	creds := infraRepos.NewCredentialSource(settings.Token)
	org := it.organizations(settings.Organization, settings.AuthScheme, creds)

	projects, err := org.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	concurrency := settings.Concurrency
	if concurrency < 1 {
		concurrency = entities.DefaultConcurrency
	}

	overviews := make([]ProjectOverview, len(projects))
	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, project := range projects {
		group.Go(func() error {
			overview := ProjectOverview{Name: project.Name, ID: project.ID}
			repos, listErr := org.ListRepositories(ctx, project)
			if listErr != nil {
				logger.Warnf("Failed to list repositories in %q: %v", project.Name, listErr)
				overview.Failed = true
			} else {
				overview.RepoCount = len(repos)
			}
			overviews[i] = overview
			return nil
		})
	}
	_ = group.Wait()

	return overviews, nil
}
