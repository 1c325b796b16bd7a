package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

// History is the interface for the snapshot history command.
type History interface {
	Execute(ctx context.Context, settings *entities.Settings, limit int) ([]entities.SnapshotRecord, error)
}

// HistoryCommand lists previously saved scan snapshots, newest first.
type HistoryCommand struct {
	snapshots repositories.SnapshotRepositoryFactory
}

// NewHistoryCommand creates a new HistoryCommand.
func NewHistoryCommand(snapshots repositories.SnapshotRepositoryFactory) *HistoryCommand {
	return &HistoryCommand{snapshots: snapshots}
}

// Execute opens the snapshot store and returns the most recent records.
func (it *HistoryCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	limit int,
) ([]entities.SnapshotRecord, error) {
	store, err := it.snapshots(settings.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return records, nil
}
