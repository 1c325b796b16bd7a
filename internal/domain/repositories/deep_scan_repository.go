package repositories

import (
	"context"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// DeepScanRepository inspects a repository's full object history for
// oversized blobs. Implementations must clone into an isolated per-call
// workspace and remove it before returning, whatever the outcome.
type DeepScanRepository interface {
	// ScanRepository clones the repository's complete history and returns
	// every historical blob at or above thresholdBytes, sorted descending by
	// size. An error means the repository contributed zero records; it never
	// aborts the scan.
	ScanRepository(ctx context.Context, repo entities.Repository, thresholdBytes uint64) ([]entities.LargeBlobRecord, error)
}

// DeepScanRepositoryFactory builds a DeepScanRepository bound to a
// credential at run time.
type DeepScanRepositoryFactory func(creds CredentialSource) DeepScanRepository
