package repositories

import (
	"context"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// SnapshotRepository persists scan summaries so successive audits of the
// same organization can be compared.
type SnapshotRepository interface {
	// Save stores a completed report and returns the snapshot ID.
	Save(ctx context.Context, report *entities.Report) (int64, error)

	// List returns the most recent snapshots, newest first.
	List(ctx context.Context, limit int) ([]entities.SnapshotRecord, error)

	// Close releases the underlying store.
	Close() error
}

// SnapshotRepositoryFactory opens the snapshot store at the given path.
type SnapshotRepositoryFactory func(path string) (SnapshotRepository, error)
