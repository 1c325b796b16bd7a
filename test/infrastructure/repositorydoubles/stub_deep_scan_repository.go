//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

// StubDeepScanRepository implements repositories.DeepScanRepository with
// canned per-repository results, keyed by repository name.
type StubDeepScanRepository struct {
	mu sync.Mutex

	RecordsByRepo map[string][]entities.LargeBlobRecord
	ErrByRepo     map[string]error
	// spy: repository names scanned
	ScannedRepos []string
	// spy: thresholds received
	Thresholds []uint64
}

var _ repositories.DeepScanRepository = (*StubDeepScanRepository)(nil)

func (s *StubDeepScanRepository) ScanRepository(
	_ context.Context,
	repo entities.Repository,
	thresholdBytes uint64,
) ([]entities.LargeBlobRecord, error) {
	s.mu.Lock()
	s.ScannedRepos = append(s.ScannedRepos, repo.Name)
	s.Thresholds = append(s.Thresholds, thresholdBytes)
	s.mu.Unlock()

	if err, ok := s.ErrByRepo[repo.Name]; ok {
		return nil, err
	}
	return s.RecordsByRepo[repo.Name], nil
}
