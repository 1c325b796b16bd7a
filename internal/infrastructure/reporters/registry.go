package reporters

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// ReportWriter renders a completed report in one output format.
type ReportWriter interface {
	// Name is the format name selected via --output.
	Name() string

	// Write renders the report to the given writer.
	Write(w io.Writer, report *entities.Report) error
}

// Registry manages all registered output formats.
type Registry struct {
	writers map[string]ReportWriter
}

// NewRegistry creates an empty reporter registry.
func NewRegistry() *Registry {
	return &Registry{
		writers: make(map[string]ReportWriter),
	}
}

// Register adds a writer under its own format name (e.g. "table").
func (r *Registry) Register(writer ReportWriter) {
	r.writers[writer.Name()] = writer
}

// Get returns the writer for the given format name.
func (r *Registry) Get(name string) (ReportWriter, error) {
	writer, ok := r.writers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %q (valid: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return writer, nil
}

// Names returns the sorted list of registered format names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
