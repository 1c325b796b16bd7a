package repositories

import (
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
	"github.com/rios0rios0/adoscope/internal/infrastructure/repositories/devops"
	"github.com/rios0rios0/adoscope/internal/infrastructure/repositories/gitscan"
	"github.com/rios0rios0/adoscope/internal/infrastructure/repositories/sqlite"
	"go.uber.org/dig"
)

// RegisterProviders registers all repository factories with the DIG
// container. The organization and credentials are only known once flags and
// settings are resolved, so commands receive factories rather than built
// repositories.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(func() repositories.OrganizationRepositoryFactory {
		return devops.NewDevOpsOrganizationRepository
	}); err != nil {
		return err
	}

	if err := container.Provide(func() repositories.DeepScanRepositoryFactory {
		return gitscan.NewGitDeepScanRepository
	}); err != nil {
		return err
	}

	if err := container.Provide(func() repositories.SnapshotRepositoryFactory {
		return sqlite.NewSqliteSnapshotRepository
	}); err != nil {
		return err
	}

	return nil
}
