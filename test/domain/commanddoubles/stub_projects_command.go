//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// StubProjectsCommand is a stub implementation of commands.Projects.
type StubProjectsCommand struct {
	ExecuteCallCount int
	Overviews        []commands.ProjectOverview
	ExecuteErr       error
	LastSettings     *entities.Settings
}

var _ commands.Projects = (*StubProjectsCommand)(nil)

func (s *StubProjectsCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
) ([]commands.ProjectOverview, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	return s.Overviews, nil
}
