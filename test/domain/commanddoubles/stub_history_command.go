//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// StubHistoryCommand is a stub implementation of commands.History.
type StubHistoryCommand struct {
	ExecuteCallCount int
	Records          []entities.SnapshotRecord
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastLimit        int
}

var _ commands.History = (*StubHistoryCommand)(nil)

func (s *StubHistoryCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	limit int,
) ([]entities.SnapshotRecord, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastLimit = limit
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	return s.Records, nil
}
