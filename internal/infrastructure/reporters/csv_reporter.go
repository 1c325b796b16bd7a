package reporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// CSVReporter renders the repository inventory as CSV, one row per
// repository in merged order. Repositories without API size data get empty
// size cells rather than zeros.
type CSVReporter struct{}

// NewCSVReporter creates a new CSVReporter.
func NewCSVReporter() *CSVReporter {
	return &CSVReporter{}
}

func (r *CSVReporter) Name() string {
	return "csv"
}

func (r *CSVReporter) Write(w io.Writer, report *entities.Report) error {
	large := make(map[string]bool, len(report.LargeRepositories))
	for _, repo := range report.LargeRepositories {
		large[repo.Project+"/"+repo.Name] = true
	}

	out := csv.NewWriter(w)
	header := []string{"project", "repository", "default_branch", "size_bytes", "size_gib", "large"}
	if err := out.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, repo := range report.Repositories {
		sizeBytes := ""
		sizeGiB := ""
		if repo.HasSize() {
			sizeBytes = strconv.FormatUint(repo.Size(), 10)
			sizeGiB = strconv.FormatFloat(entities.SizeGiB(repo.Size()), 'f', 2, 64)
		}
		row := []string{
			repo.Project,
			repo.Name,
			repo.DefaultBranch,
			sizeBytes,
			sizeGiB,
			strconv.FormatBool(large[repo.Project+"/"+repo.Name]),
		}
		if err := out.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	out.Flush()
	return out.Error()
}
