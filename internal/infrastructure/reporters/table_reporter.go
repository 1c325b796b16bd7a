package reporters

import (
	"fmt"
	"io"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

const (
	rankingRowLimit  = 10
	deepScanRowLimit = 20
)

// TableReporter renders the report as terminal tables. Sections with no
// data print an explicit marker instead of being silently dropped.
type TableReporter struct{}

// NewTableReporter creates a new TableReporter.
func NewTableReporter() *TableReporter {
	return &TableReporter{}
}

func (r *TableReporter) Name() string {
	return "table"
}

func (r *TableReporter) Write(w io.Writer, report *entities.Report) error {
	fmt.Fprintf(w, "📊 Scan report for %q\n", report.Organization)
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	if report.ConnectedAs != "" {
		fmt.Fprintf(w, "Connected as: %s\n", report.ConnectedAs)
	}
	if report.Incomplete {
		fmt.Fprintf(w, "⚠️  INCOMPLETE REPORT: %s\n", report.IncompleteReason)
	}
	fmt.Fprintln(w)

	r.writeSummary(w, report)
	r.writeRollups(w, report)
	r.writeLargeRepositories(w, report)
	r.writeCommitRanking(w, report)
	r.writeDeepScan(w, report)

	if report.Warnings > 0 {
		fmt.Fprintf(w, "⚠️  %d warnings were logged during the scan\n", report.Warnings)
	}
	return nil
}

func (r *TableReporter) writeSummary(w io.Writer, report *entities.Report) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("Summary")
	tbl.AppendRow(table.Row{"Projects", report.ProjectCount})
	tbl.AppendRow(table.Row{"Repositories", report.RepoCount})
	if len(report.SkippedProjects) > 0 {
		tbl.AppendRow(table.Row{"Skipped projects", strings.Join(report.SkippedProjects, ", ")})
	}
	tbl.AppendRow(table.Row{"Large repositories", report.LargeRepoCount})
	tbl.AppendRow(table.Row{"Largest repository", r.formatLargest(report.LargestRepository)})
	tbl.AppendRow(table.Row{"Oldest repository", r.formatOldest(report.OldestRepository)})
	tbl.AppendRow(table.Row{"Users", report.UserCount})
	tbl.Render()
	fmt.Fprintln(w)
}

func (r *TableReporter) formatLargest(repo *entities.RepositorySize) string {
	if repo == nil {
		return "no size data"
	}
	return fmt.Sprintf("%s/%s (%s, %.2f GiB)",
		repo.Project, repo.Name, humanize.IBytes(repo.SizeBytes), repo.SizeGiB)
}

func (r *TableReporter) formatOldest(commit *entities.CommitRecord) string {
	if commit == nil {
		return "no commit data"
	}
	return fmt.Sprintf("%s/%s (first commit %s)", commit.Project, commit.Repo, commit.Date)
}

func (r *TableReporter) writeRollups(w io.Writer, report *entities.Report) {
	rollups := report.Rollups

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("Migration Rollups")
	tbl.AppendRow(table.Row{"Work items", rollups.WorkItems})
	tbl.AppendRow(table.Row{"Pull requests", rollups.PullRequests})
	tbl.AppendRow(table.Row{"Pipelines", rollups.Pipelines})
	tbl.AppendRow(table.Row{"Repos referenced by pipelines", rollups.ReposWithPipelines})
	tbl.AppendRow(table.Row{"Service hooks", rollups.ServiceHooks})
	tbl.AppendRow(table.Row{"Teams", rollups.Teams})
	tbl.AppendRow(table.Row{"Projects with teams", rollups.ProjectsWithTeams})
	if rollups.AdvancedSecurityEnabled {
		tbl.AppendRow(table.Row{"Secret alerts", rollups.SecretAlerts})
		tbl.AppendRow(table.Row{"Dependency alerts", rollups.DependencyAlerts})
		tbl.AppendRow(table.Row{"Code scanning alerts", rollups.CodeAlerts})
		tbl.AppendRow(table.Row{"Repos with alerts", rollups.ReposWithAlerts})
	} else {
		tbl.AppendRow(table.Row{"Security alerts", "(not enabled)"})
	}
	tbl.Render()

	if len(report.HookConsumerTypes) > 0 {
		fmt.Fprintf(w, "Hook consumer types: %s\n", strings.Join(report.HookConsumerTypes, ", "))
	}
	fmt.Fprintln(w)
}

func (r *TableReporter) writeLargeRepositories(w io.Writer, report *entities.Report) {
	if len(report.LargeRepositories) == 0 {
		fmt.Fprintln(w, "No repositories above the size threshold.")
		fmt.Fprintln(w)
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("Large Repositories")
	tbl.AppendHeader(table.Row{"Project", "Repository", "Size", "GiB"})
	for _, repo := range report.LargeRepositories {
		tbl.AppendRow(table.Row{
			repo.Project, repo.Name,
			humanize.IBytes(repo.SizeBytes),
			fmt.Sprintf("%.2f", repo.SizeGiB),
		})
	}
	tbl.AppendFooter(table.Row{"Total", len(report.LargeRepositories), "", ""})
	tbl.Render()
	fmt.Fprintln(w)
}

func (r *TableReporter) writeCommitRanking(w io.Writer, report *entities.Report) {
	if len(report.CommitRanking) == 0 {
		return
	}

	ranking := report.CommitRanking
	if len(ranking) > rankingRowLimit {
		ranking = ranking[:rankingRowLimit]
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("Oldest Repositories")
	tbl.AppendHeader(table.Row{"Project", "Repository", "First Commit"})
	for _, commit := range ranking {
		tbl.AppendRow(table.Row{commit.Project, commit.Repo, commit.Date})
	}
	tbl.Render()
	fmt.Fprintln(w)
}

func (r *TableReporter) writeDeepScan(w io.Writer, report *entities.Report) {
	if report.DeepScan == nil {
		fmt.Fprintln(w, "Deep scan: not requested.")
		return
	}

	scan := report.DeepScan
	fmt.Fprintf(w, "🔍 Deep scan: %d files >= %.2f MB across full history\n",
		scan.TotalLargeFiles, scan.ThresholdMB)
	for _, failed := range scan.FailedClones {
		fmt.Fprintf(w, "⚠️  Clone failed: %s\n", failed)
	}

	if len(scan.Blobs) == 0 {
		return
	}

	blobs := scan.Blobs
	if len(blobs) > deepScanRowLimit {
		blobs = blobs[:deepScanRowLimit]
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Project", "Repository", "Path", "MB"})
	for _, blob := range blobs {
		tbl.AppendRow(table.Row{
			blob.Project, blob.Repo, blob.Path,
			fmt.Sprintf("%.2f", blob.SizeMB),
		})
	}
	if len(scan.Blobs) > deepScanRowLimit {
		tbl.AppendFooter(table.Row{"", "", "showing top", deepScanRowLimit})
	}
	tbl.Render()
}
