package controllers

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

const defaultHistoryLimit = 10

// HistoryController handles the "history" subcommand (stored snapshots).
type HistoryController struct {
	command commands.History
}

// NewHistoryController creates a new HistoryController.
func NewHistoryController(command commands.History) *HistoryController {
	return &HistoryController{command: command}
}

// GetBind returns the Cobra command metadata for the history controller.
func (it *HistoryController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "history",
		Short: "Show previously recorded scans",
		Long: `Show the most recent scans recorded in the local history store.

Each completed scan is recorded automatically unless it ran with
--no-history, so successive audits of the same organization can be
compared over time.`,
	}
}

// Execute lists the stored snapshots, newest first.
func (it *HistoryController) Execute(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, _ := cmd.Flags().GetString("config")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 1 {
		limit = defaultHistoryLimit
	}

	// History needs no organization or token, only the store path.
	settings, err := entities.LoadSettings(configPath)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		return
	}

	records, err := it.command.Execute(ctx, settings, limit)
	if err != nil {
		logger.Errorf("Failed to read history: %v", err)
		return
	}

	if len(records) == 0 {
		logger.Info("No recorded scans yet. Run a scan first.")
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{
		"ID", "Taken At", "Organization", "Projects", "Repos",
		"Large", "Work Items", "PRs", "Pipelines", "Users", "Complete",
	})
	for _, record := range records {
		complete := "yes"
		if record.Incomplete {
			complete = "no"
		}
		tbl.AppendRow(table.Row{
			record.ID,
			record.TakenAt.Format(time.RFC3339),
			record.Organization,
			record.ProjectCount,
			record.RepoCount,
			record.LargeRepoCount,
			record.WorkItems,
			record.PullRequests,
			record.Pipelines,
			record.UserCount,
			complete,
		})
	}
	tbl.Render()
}

// AddFlags adds the history-specific flags to the given Cobra command.
func (it *HistoryController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", defaultHistoryLimit, "Number of snapshots to show")
}
