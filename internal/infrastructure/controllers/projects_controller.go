package controllers

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// ProjectsController handles the "projects" subcommand (quick listing).
type ProjectsController struct {
	command commands.Projects
}

// NewProjectsController creates a new ProjectsController.
func NewProjectsController(command commands.Projects) *ProjectsController {
	return &ProjectsController{command: command}
}

// GetBind returns the Cobra command metadata for the projects controller.
func (it *ProjectsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "projects",
		Short: "List the organization's projects and repository counts",
		Long: `List every project with its repository count.

This is the quick pre-flight check before a full scan: it touches only
the project and repository listing endpoints.`,
	}
}

// Execute lists the projects and prints them as a table.
func (it *ProjectsController) Execute(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, _ := cmd.Flags().GetString("config")
	organization, _ := cmd.Flags().GetString("organization")
	token, _ := cmd.Flags().GetString("token")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	settings, err := entities.LoadSettings(configPath)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		return
	}
	settings.ApplyOverrides(organization, token)
	if validateErr := settings.Validate(); validateErr != nil {
		logger.Errorf("Invalid configuration: %v", validateErr)
		return
	}

	overviews, err := it.command.Execute(ctx, settings)
	if err != nil {
		logger.Errorf("Failed to list projects: %v", err)
		return
	}

	totalRepos := 0
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Project", "Repositories"})
	for _, overview := range overviews {
		if overview.Failed {
			tbl.AppendRow(table.Row{overview.Name, "(listing failed)"})
			continue
		}
		tbl.AppendRow(table.Row{overview.Name, overview.RepoCount})
		totalRepos += overview.RepoCount
	}
	tbl.AppendFooter(table.Row{len(overviews), totalRepos})
	tbl.Render()
}
