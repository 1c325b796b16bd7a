package reporters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// JSONReporter renders the report as indented JSON. This is the canonical
// machine-readable artifact; every section appears, including explicit nulls
// for "no data" sections.
type JSONReporter struct{}

// NewJSONReporter creates a new JSONReporter.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

func (r *JSONReporter) Name() string {
	return "json"
}

func (r *JSONReporter) Write(w io.Writer, report *entities.Report) error {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	body = append(body, '\n')
	_, err = w.Write(body)
	return err
}
