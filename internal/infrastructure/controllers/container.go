package controllers

import (
	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"go.uber.org/dig"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewScanController); err != nil {
		return err
	}
	if err := container.Provide(NewProjectsController); err != nil {
		return err
	}
	if err := container.Provide(NewHistoryController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	scanController *ScanController,
	projectsController *ProjectsController,
	historyController *HistoryController,
) *[]entities.Controller {
	return &[]entities.Controller{
		scanController,
		projectsController,
		historyController,
	}
}
