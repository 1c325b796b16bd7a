//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/adoscope/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// RepositoryBuilder helps create test repositories with a fluent interface.
type RepositoryBuilder struct {
	*testkit.BaseBuilder
	project    string
	name       string
	id         string
	sizeBytes  *uint64
	mergeIndex int
}

// NewRepositoryBuilder creates a new repository builder with sensible defaults.
func NewRepositoryBuilder() *RepositoryBuilder {
	size := uint64(1024)
	return &RepositoryBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		project:     "test-project",
		name:        "test-repo",
		id:          "repo-1",
		sizeBytes:   &size,
		mergeIndex:  0,
	}
}

// WithProject sets the owning project name.
func (b *RepositoryBuilder) WithProject(project string) *RepositoryBuilder {
	b.project = project
	return b
}

// WithName sets the repository name.
func (b *RepositoryBuilder) WithName(name string) *RepositoryBuilder {
	b.name = name
	return b
}

// WithID sets the repository ID.
func (b *RepositoryBuilder) WithID(id string) *RepositoryBuilder {
	b.id = id
	return b
}

// WithSize sets the API-reported size in bytes.
func (b *RepositoryBuilder) WithSize(sizeBytes uint64) *RepositoryBuilder {
	b.sizeBytes = &sizeBytes
	return b
}

// WithoutSize marks the repository as having no size data.
func (b *RepositoryBuilder) WithoutSize() *RepositoryBuilder {
	b.sizeBytes = nil
	return b
}

// WithMergeIndex sets the position in the merged sequence.
func (b *RepositoryBuilder) WithMergeIndex(index int) *RepositoryBuilder {
	b.mergeIndex = index
	return b
}

// Build creates the repository (satisfies testkit.Builder interface).
func (b *RepositoryBuilder) Build() interface{} {
	return b.BuildRepository()
}

// BuildRepository creates the repository with a concrete return type.
func (b *RepositoryBuilder) BuildRepository() entities.Repository {
	return entities.Repository{
		Project:    b.project,
		Name:       b.name,
		ID:         b.id,
		SizeBytes:  b.sizeBytes,
		MergeIndex: b.mergeIndex,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositoryBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	size := uint64(1024)
	b.project = "test-project"
	b.name = "test-repo"
	b.id = "repo-1"
	b.sizeBytes = &size
	b.mergeIndex = 0
	return b
}

// Clone creates a deep copy of the RepositoryBuilder.
func (b *RepositoryBuilder) Clone() testkit.Builder {
	var size *uint64
	if b.sizeBytes != nil {
		copied := *b.sizeBytes
		size = &copied
	}
	return &RepositoryBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		project:     b.project,
		name:        b.name,
		id:          b.id,
		sizeBytes:   size,
		mergeIndex:  b.mergeIndex,
	}
}
