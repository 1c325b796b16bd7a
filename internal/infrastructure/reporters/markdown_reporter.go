package reporters

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// MarkdownReporter renders the report as a markdown document suitable for
// pasting into a migration planning page.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a new MarkdownReporter.
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

func (r *MarkdownReporter) Name() string {
	return "markdown"
}

func (r *MarkdownReporter) Write(w io.Writer, report *entities.Report) error {
	fmt.Fprintf(w, "# Scan report for %q\n\n", report.Organization)
	fmt.Fprintf(w, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	if report.Incomplete {
		fmt.Fprintf(w, "> **Incomplete report:** %s\n\n", report.IncompleteReason)
	}

	fmt.Fprintln(w, "## Summary")
	fmt.Fprintln(w)
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.AppendRow(table.Row{"Projects", report.ProjectCount})
	summary.AppendRow(table.Row{"Repositories", report.RepoCount})
	summary.AppendRow(table.Row{"Large repositories", report.LargeRepoCount})
	summary.AppendRow(table.Row{"Work items", report.Rollups.WorkItems})
	summary.AppendRow(table.Row{"Pull requests", report.Rollups.PullRequests})
	summary.AppendRow(table.Row{"Pipelines", report.Rollups.Pipelines})
	summary.AppendRow(table.Row{"Service hooks", report.Rollups.ServiceHooks})
	summary.AppendRow(table.Row{"Teams", report.Rollups.Teams})
	summary.AppendRow(table.Row{"Users", report.UserCount})
	summary.RenderMarkdown()
	fmt.Fprintln(w)

	if len(report.SkippedProjects) > 0 {
		fmt.Fprintf(w, "Skipped projects: %s\n\n", strings.Join(report.SkippedProjects, ", "))
	}

	fmt.Fprintln(w, "## Large repositories")
	fmt.Fprintln(w)
	if len(report.LargeRepositories) == 0 {
		fmt.Fprintln(w, "None above the threshold.")
	} else {
		large := table.NewWriter()
		large.SetOutputMirror(w)
		large.AppendHeader(table.Row{"Project", "Repository", "GiB"})
		for _, repo := range report.LargeRepositories {
			large.AppendRow(table.Row{repo.Project, repo.Name, fmt.Sprintf("%.2f", repo.SizeGiB)})
		}
		large.RenderMarkdown()
	}
	fmt.Fprintln(w)

	if report.DeepScan != nil {
		fmt.Fprintln(w, "## Deep scan")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d files at or above %.2f MB in full history.\n\n",
			report.DeepScan.TotalLargeFiles, report.DeepScan.ThresholdMB)
		if len(report.DeepScan.Blobs) > 0 {
			blobs := table.NewWriter()
			blobs.SetOutputMirror(w)
			blobs.AppendHeader(table.Row{"Project", "Repository", "Path", "MB"})
			for _, blob := range report.DeepScan.Blobs {
				blobs.AppendRow(table.Row{
					blob.Project, blob.Repo, blob.Path,
					fmt.Sprintf("%.2f", blob.SizeMB),
				})
			}
			blobs.RenderMarkdown()
			fmt.Fprintln(w)
		}
	}

	return nil
}
