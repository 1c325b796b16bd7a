package controllers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
	"github.com/rios0rios0/adoscope/internal/infrastructure/reporters"
)

// ScanController handles the "scan" subcommand (full audit).
type ScanController struct {
	command   commands.Scan
	reporters *reporters.Registry
	snapshots repositories.SnapshotRepositoryFactory
}

// NewScanController creates a new ScanController.
func NewScanController(
	command commands.Scan,
	registry *reporters.Registry,
	snapshots repositories.SnapshotRepositoryFactory,
) *ScanController {
	return &ScanController{
		command:   command,
		reporters: registry,
		snapshots: snapshots,
	}
}

// GetBind returns the Cobra command metadata for the scan controller.
func (it *ScanController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "scan",
		Short: "Run the full read-only audit of an organization",
		Long: `Audit an Azure DevOps organization before a migration.

Collects every project and repository, derives size and age metrics,
counts work items, pull requests, pipelines, service hooks, teams,
security alerts and users, and emits a single report.

With --deep-scan every repository is mirror-cloned and its complete
object history is searched for oversized files, including files that
only ever existed in past commits.

The scan is read-only: it creates, changes and deletes nothing in the
organization. An interrupted scan still emits a report, marked
incomplete.`,
	}
}

// Execute runs the audit and renders, saves and records the report.
func (it *ScanController) Execute(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, _ := cmd.Flags().GetString("config")
	organization, _ := cmd.Flags().GetString("organization")
	token, _ := cmd.Flags().GetString("token")
	verbose, _ := cmd.Flags().GetBool("verbose")

	deepScan, _ := cmd.Flags().GetBool("deep-scan")
	output, _ := cmd.Flags().GetString("output")
	savePath, _ := cmd.Flags().GetString("save")
	project, _ := cmd.Flags().GetString("project")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	largeRepoGiB, _ := cmd.Flags().GetFloat64("large-repo-gib")
	largeBlobMB, _ := cmd.Flags().GetFloat64("large-blob-mb")

	writer, err := it.reporters.Get(output)
	if err != nil {
		logger.Errorf("%v", err)
		return
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

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, err := it.command.Execute(ctx, settings, commands.ScanOptions{
		Verbose:       verbose,
		DeepScan:      deepScan,
		ProjectFilter: project,
		Concurrency:   concurrency,
		LargeRepoGiB:  largeRepoGiB,
		LargeBlobMB:   largeBlobMB,
	})
	if err != nil {
		logger.Errorf("Scan failed: %v", err)
		return
	}

	if writeErr := writer.Write(os.Stdout, report); writeErr != nil {
		logger.Errorf("Failed to render report: %v", writeErr)
	}

	if savePath != "" {
		if saveErr := it.saveReport(savePath, report); saveErr != nil {
			logger.Errorf("Failed to save report to %q: %v", savePath, saveErr)
		} else {
			logger.Infof("Report saved to %s", savePath)
		}
	}

	if !noHistory {
		it.recordSnapshot(context.WithoutCancel(ctx), settings.HistoryPath, report)
	}
}

// saveReport writes the canonical JSON report to a file, whatever terminal
// format was selected.
func (it *ScanController) saveReport(path string, report *entities.Report) error {
	writer, err := it.reporters.Get("json")
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return writer.Write(file, report)
}

// recordSnapshot appends the scan to the local history store. Failures are
// warnings: history is a convenience, never a reason to fail a scan.
func (it *ScanController) recordSnapshot(ctx context.Context, path string, report *entities.Report) {
	store, err := it.snapshots(path)
	if err != nil {
		logger.Warnf("Snapshot store unavailable: %v", err)
		return
	}
	defer func() { _ = store.Close() }()

	id, err := store.Save(ctx, report)
	if err != nil {
		logger.Warnf("Failed to record snapshot: %v", err)
		return
	}
	logger.Debugf("Recorded snapshot %d in %s", id, path)
}

// AddFlags adds the scan-specific flags to the given Cobra command.
func (it *ScanController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("deep-scan", false,
		"Mirror-clone every repository and scan its full history for oversized files")
	cmd.Flags().String("output", "table",
		fmt.Sprintf("Output format (%s)", strings.Join(it.reporters.Names(), ", ")))
	cmd.Flags().String("save", "",
		"Also write the JSON report to this file")
	cmd.Flags().String("project", "",
		"Only scan this project")
	cmd.Flags().Int("concurrency", 0,
		fmt.Sprintf("Worker pool size, 1-%d (default from config)", entities.MaxConcurrency))
	cmd.Flags().Duration("timeout", 0,
		"Abort the scan after this duration, emitting a partial report")
	cmd.Flags().Bool("no-history", false,
		"Do not record this scan in the local history store")
	cmd.Flags().Float64("large-repo-gib", 0,
		"Large-repository threshold in GiB (default from config)")
	cmd.Flags().Float64("large-blob-mb", 0,
		"Deep-scan file size threshold in MB (default from config)")
}
