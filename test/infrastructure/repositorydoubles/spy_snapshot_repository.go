//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

// SpySnapshotRepository implements repositories.SnapshotRepository in
// memory, recording every saved report.
type SpySnapshotRepository struct {
	mu sync.Mutex

	SaveErr error
	ListErr error
	Records []entities.SnapshotRecord
	// spy: reports received by Save
	SavedReports []*entities.Report
	Closed       bool
}

var _ repositories.SnapshotRepository = (*SpySnapshotRepository)(nil)

func (s *SpySnapshotRepository) Save(_ context.Context, report *entities.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return 0, s.SaveErr
	}
	s.SavedReports = append(s.SavedReports, report)
	return int64(len(s.SavedReports)), nil
}

func (s *SpySnapshotRepository) List(_ context.Context, limit int) ([]entities.SnapshotRecord, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	if limit > 0 && limit < len(s.Records) {
		return s.Records[:limit], nil
	}
	return s.Records, nil
}

func (s *SpySnapshotRepository) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}
