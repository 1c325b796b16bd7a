package gitscan

import (
	"context"
	"fmt"
	"os"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

// GitDeepScanRepository implements repositories.DeepScanRepository with a
// bare mirror clone per repository. Each call gets its own temporary
// workspace, removed before returning, so peak disk usage is bounded to one
// clone regardless of concurrency or failures.
type GitDeepScanRepository struct {
	creds repositories.CredentialSource
}

// NewGitDeepScanRepository creates a deep scanner bound to a credential.
func NewGitDeepScanRepository(creds repositories.CredentialSource) repositories.DeepScanRepository {
	return &GitDeepScanRepository{creds: creds}
}

// ScanRepository clones the full object history and returns every historical
// blob at or above thresholdBytes, sorted descending by size.
func (g *GitDeepScanRepository) ScanRepository(
	ctx context.Context,
	repo entities.Repository,
	thresholdBytes uint64,
) ([]entities.LargeBlobRecord, error) {
	if repo.RemoteURL == "" {
		return nil, fmt.Errorf("repository %s/%s has no remote URL", repo.Project, repo.Name)
	}

	workspace, err := os.MkdirTemp("", "adoscope-scan-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scan workspace: %w", err)
	}
	// The workspace is removed on every exit path, including a failed clone
	// or a scan interrupted mid-walk.
	defer func() {
		if removeErr := os.RemoveAll(workspace); removeErr != nil {
			logger.Warnf("Failed to remove scan workspace %q: %v", workspace, removeErr)
		}
	}()

	token, err := g.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credential: %w", err)
	}

	var auth *githttp.BasicAuth
	if token != "" {
		auth = &githttp.BasicAuth{Username: "pat", Password: token}
	}

	//nolint:exhaustruct // Minimal CloneOptions with required fields only
	cloned, err := git.PlainCloneContext(ctx, workspace, true, &git.CloneOptions{
		URL:    repo.RemoteURL,
		Auth:   auth,
		Mirror: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s/%s: %w", repo.Project, repo.Name, err)
	}

	return scanObjects(cloned, repo, thresholdBytes)
}

// scanObjects walks the entire object database: every blob ever committed is
// a candidate, including blobs only reachable from deleted files or
// rewritten history. Paths are resolved afterwards by walking each commit's
// tree, skipping subtrees already visited.
func scanObjects(
	repo *git.Repository,
	source entities.Repository,
	thresholdBytes uint64,
) ([]entities.LargeBlobRecord, error) {
	candidates := make(map[plumbing.Hash]uint64)

	blobs, err := repo.BlobObjects()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate blobs: %w", err)
	}
	defer blobs.Close()

	err = blobs.ForEach(func(blob *object.Blob) error {
		if blob.Size > 0 && uint64(blob.Size) >= thresholdBytes {
			candidates[blob.Hash] = uint64(blob.Size)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect blobs: %w", err)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	paths := resolveBlobPaths(repo, candidates)

	records := make([]entities.LargeBlobRecord, 0, len(candidates))
	for hash, size := range candidates {
		path, ok := paths[hash]
		if !ok {
			// No surviving tree names this blob; report it by hash.
			path = hash.String()
		}
		records = append(records, entities.LargeBlobRecord{
			Project:   source.Project,
			Repo:      source.Name,
			Path:      path,
			SizeBytes: size,
			SizeMB:    entities.SizeMB(size),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].SizeBytes != records[j].SizeBytes {
			return records[i].SizeBytes > records[j].SizeBytes
		}
		return records[i].Path < records[j].Path
	})

	return records, nil
}

// resolveBlobPaths maps candidate blob hashes to the first path a commit
// tree records for them. Best effort: a walk error only loses paths, never
// the size findings.
func resolveBlobPaths(
	repo *git.Repository,
	candidates map[plumbing.Hash]uint64,
) map[plumbing.Hash]string {
	paths := make(map[plumbing.Hash]string, len(candidates))
	seenTrees := make(map[plumbing.Hash]bool)

	commits, err := repo.CommitObjects()
	if err != nil {
		return paths
	}
	defer commits.Close()

	_ = commits.ForEach(func(commit *object.Commit) error {
		if len(paths) == len(candidates) {
			return storer.ErrStop
		}

		tree, treeErr := commit.Tree()
		if treeErr != nil {
			return nil //nolint:nilerr // a corrupt commit only loses its paths
		}

		walker := object.NewTreeWalker(tree, true, seenTrees)
		defer walker.Close()

		for {
			name, entry, walkErr := walker.Next()
			if walkErr != nil {
				// io.EOF ends the walk; anything else is best effort too.
				break
			}
			if !entry.Mode.IsFile() {
				continue
			}
			if _, wanted := candidates[entry.Hash]; !wanted {
				continue
			}
			if _, have := paths[entry.Hash]; !have {
				paths[entry.Hash] = name
			}
		}

		return nil
	})

	return paths
}
