package repositories

import (
	"context"
	"fmt"
	"os"
	"strings"

	domainRepos "github.com/rios0rios0/adoscope/internal/domain/repositories"
)

// StaticCredentialSource serves a fixed token.
type StaticCredentialSource struct {
	token string
}

// NewStaticCredentialSource wraps an inline token.
func NewStaticCredentialSource(token string) *StaticCredentialSource {
	return &StaticCredentialSource{token: token}
}

// Token returns the fixed token.
func (s *StaticCredentialSource) Token(_ context.Context) (string, error) {
	return s.token, nil
}

// FileCredentialSource re-reads a token file on every call, so an externally
// rotated token takes effect mid-run without restarting the scan.
type FileCredentialSource struct {
	path string
}

// NewFileCredentialSource wraps a token file path.
func NewFileCredentialSource(path string) *FileCredentialSource {
	return &FileCredentialSource{path: path}
}

// Token reads the current token from the file.
func (f *FileCredentialSource) Token(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file %q: %w", f.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// NewCredentialSource picks the right source for a resolved token value: a
// value that names an existing file becomes a file source, anything else is
// served as-is.
func NewCredentialSource(resolved string) domainRepos.CredentialSource {
	if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
		return NewFileCredentialSource(resolved)
	}
	return NewStaticCredentialSource(resolved)
}
