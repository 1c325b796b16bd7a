package commands

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/adoscope/internal/infrastructure/repositories"
)

// Scan is the interface for the scan command.
type Scan interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ScanOptions) (*entities.Report, error)
}

// ScanOptions holds runtime overrides for a single scan.
type ScanOptions struct {
	Verbose       bool
	DeepScan      bool
	ProjectFilter string  // If set, only scan this project (CLI override)
	Concurrency   int     // If > 0, overrides the configured pool size
	LargeRepoGiB  float64 // If > 0, overrides the large-repository threshold
	LargeBlobMB   float64 // If > 0, overrides the deep-scan blob threshold
}

// ScanCommand orchestrates the full audit flow: connectivity probe ->
// collect projects and repositories -> derived size and age metrics ->
// migration rollups -> user entitlements -> optional deep history scan ->
// report assembly.
//
// Every phase runs through a bounded pool where workers write only to their
// own index slot, so reductions after the join are deterministic regardless
// of completion order. A canceled context turns remaining units into
// zero-contributions and the report is still assembled, marked incomplete.
type ScanCommand struct {
	organizations repositories.OrganizationRepositoryFactory
	deepScans     repositories.DeepScanRepositoryFactory
}

// NewScanCommand creates a new ScanCommand with the given factories.
func NewScanCommand(
	organizations repositories.OrganizationRepositoryFactory,
	deepScans repositories.DeepScanRepositoryFactory,
) *ScanCommand {
	return &ScanCommand{
		organizations: organizations,
		deepScans:     deepScans,
	}
}

// projectListing is the per-project result slot of the collection phase.
type projectListing struct {
	repos  []entities.Repository
	failed bool
}

// deepScanResult is the per-repository result slot of the deep-scan phase.
type deepScanResult struct {
	records []entities.LargeBlobRecord
	failed  bool
}

// Execute runs the complete audit and returns the assembled report. It
// returns an error only for fatal conditions: an unreachable organization or
// a failed project listing. Everything else degrades to warnings.
func (it *ScanCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ScanOptions,
) (*entities.Report, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	concurrency := effectiveConcurrency(settings, opts)
	largeRepoGiB := settings.Thresholds.LargeRepoGiB
	if opts.LargeRepoGiB > 0 {
		largeRepoGiB = opts.LargeRepoGiB
	}
	largeBlobMB := settings.Thresholds.LargeBlobMB
	if opts.LargeBlobMB > 0 {
		largeBlobMB = opts.LargeBlobMB
	}
	deepScan := settings.DeepScan || opts.DeepScan

	creds := infraRepos.NewCredentialSource(settings.Token)
	org := it.organizations(settings.Organization, settings.AuthScheme, creds)

	connectedAs, err := org.CheckConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot reach organization %q: %w", settings.Organization, err)
	}
	if connectedAs != "" {
		logger.Infof("Connected to %q as %s", settings.Organization, connectedAs)
	}

	projects, err := org.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	projects = filterProjects(projects, opts.ProjectFilter)
	logger.Infof("Found %d projects", len(projects))

	if len(projects) == 0 {
		logger.Info("No projects found. Nothing to migrate.")
		return it.assembleEmptyReport(ctx, settings.Organization, connectedAs), nil
	}

	warnings := 0

	// Phase: collect repositories per project, skipping failed projects.
	survivors, merged, skipped, collectWarnings := it.collectRepositories(ctx, org, projects, concurrency)
	warnings += collectWarnings
	logger.Infof("Collected %d repositories across %d projects", len(merged), len(survivors))
	if len(merged) == 0 {
		logger.Info("No repositories found. Nothing to migrate.")
	}

	// Phase: size metrics over the merged sequence (pure, no requests).
	largeRepos := entities.FilterLargeRepositories(merged, entities.GiBToBytes(largeRepoGiB))
	largeRows := make([]entities.RepositorySize, 0, len(largeRepos))
	for _, repo := range largeRepos {
		largeRows = append(largeRows, entities.NewRepositorySize(repo))
	}
	var largestRow *entities.RepositorySize
	if largest := entities.LargestRepository(merged); largest != nil {
		row := entities.NewRepositorySize(*largest)
		largestRow = &row
	}

	// Phase: earliest commit per repository, then the age ranking.
	records, commitWarnings := it.collectEarliestCommits(ctx, org, merged, concurrency)
	warnings += commitWarnings
	ranking := entities.RankByEarliestCommit(records)
	oldest := entities.OldestRepository(records)

	// Phase: per-project migration rollups.
	advancedSecurity := org.HasAdvancedSecurity(ctx)
	if advancedSecurity {
		logger.Info("Advanced Security capability detected, counting alerts")
	}
	rollups := it.collectRollups(ctx, org, survivors, merged, advancedSecurity, concurrency)
	totals, consumerTypes := entities.SumRollups(rollups)
	totals.AdvancedSecurityEnabled = advancedSecurity

	// Phase: organization-wide user entitlements.
	users, err := org.ListUsers(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warnf("Failed to list users: %v", err)
		}
		warnings++
		users = nil
	}

	// Phase: optional full-history scan for oversized blobs.
	var deepScanSection *entities.DeepScanReport
	if deepScan {
		var deepWarnings int
		deepScanSection, deepWarnings = it.runDeepScan(ctx, creds, merged, largeBlobMB, concurrency)
		warnings += deepWarnings
	}

	report := &entities.Report{
		Organization:      settings.Organization,
		GeneratedAt:       time.Now().UTC(),
		ConnectedAs:       connectedAs,
		ProjectCount:      len(survivors),
		RepoCount:         len(merged),
		Repositories:      merged,
		SkippedProjects:   skipped,
		LargeRepoCount:    len(largeRows),
		LargeRepositories: largeRows,
		LargestRepository: largestRow,
		OldestRepository:  oldest,
		CommitRanking:     ranking,
		Rollups:           totals,
		HookConsumerTypes: consumerTypes,
		Users:             users,
		UserCount:         len(users),
		DeepScan:          deepScanSection,
		Warnings:          warnings,
	}
	markIncomplete(ctx, report)

	logger.Infof("Scan complete: %d projects, %d repositories, %d warnings",
		report.ProjectCount, report.RepoCount, report.Warnings)
	return report, nil
}

// collectRepositories lists each project's repositories through the bounded
// pool. Failed projects are skipped with a warning and contribute nothing.
// The merged sequence is the concatenation of per-project API order, with
// MergeIndex assigned after the join.
func (it *ScanCommand) collectRepositories(
	ctx context.Context,
	org repositories.OrganizationRepository,
	projects []entities.Project,
	concurrency int,
) ([]entities.Project, []entities.Repository, []string, int) {
	listings := make([]projectListing, len(projects))

	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, project := range projects {
		group.Go(func() error {
			if ctx.Err() != nil {
				listings[i] = projectListing{failed: true}
				return nil
			}
			repos, err := org.ListRepositories(ctx, project)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warnf("Skipping project %q: %v", project.Name, err)
				}
				listings[i] = projectListing{failed: true}
				return nil
			}
			listings[i] = projectListing{repos: repos}
			return nil
		})
	}
	_ = group.Wait()

	survivors := make([]entities.Project, 0, len(projects))
	merged := make([]entities.Repository, 0, len(projects))
	var skipped []string
	warnings := 0
	for i, listing := range listings {
		if listing.failed {
			skipped = append(skipped, projects[i].Name)
			warnings++
			continue
		}
		survivors = append(survivors, projects[i])
		for _, repo := range listing.repos {
			repo.MergeIndex = len(merged)
			merged = append(merged, repo)
		}
	}
	return survivors, merged, skipped, warnings
}

// collectEarliestCommits fetches the oldest commit of every repository.
// Repositories without history contribute nothing; fetch failures warn and
// contribute nothing. The output preserves merge order.
func (it *ScanCommand) collectEarliestCommits(
	ctx context.Context,
	org repositories.OrganizationRepository,
	repos []entities.Repository,
	concurrency int,
) ([]entities.CommitRecord, int) {
	slots := make([]*entities.CommitRecord, len(repos))
	failed := make([]bool, len(repos))

	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, repo := range repos {
		group.Go(func() error {
			if ctx.Err() != nil {
				failed[i] = true
				return nil
			}
			commit, err := org.EarliestCommit(ctx, repo)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warnf("Failed to fetch earliest commit of %s/%s: %v",
						repo.Project, repo.Name, err)
				}
				failed[i] = true
				return nil
			}
			slots[i] = commit
			return nil
		})
	}
	_ = group.Wait()

	records := make([]entities.CommitRecord, 0, len(repos))
	warnings := 0
	for i, commit := range slots {
		if failed[i] {
			warnings++
			continue
		}
		if commit == nil {
			continue
		}
		records = append(records, *commit)
	}
	return records, warnings
}

// collectRollups computes one ProjectRollup per surviving project through
// the bounded pool. Every counter is a total function: failed sub-requests
// contribute zero and never abort the project.
func (it *ScanCommand) collectRollups(
	ctx context.Context,
	org repositories.OrganizationRepository,
	projects []entities.Project,
	merged []entities.Repository,
	advancedSecurity bool,
	concurrency int,
) []entities.ProjectRollup {
	reposByProject := make(map[string][]entities.Repository, len(projects))
	for _, repo := range merged {
		reposByProject[repo.Project] = append(reposByProject[repo.Project], repo)
	}

	rollups := make([]entities.ProjectRollup, len(projects))
	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, project := range projects {
		group.Go(func() error {
			rollups[i] = it.projectRollup(ctx, org, project, reposByProject[project.Name], advancedSecurity)
			return nil
		})
	}
	_ = group.Wait()
	return rollups
}

// projectRollup counts one project's migration-relevant resources.
func (it *ScanCommand) projectRollup(
	ctx context.Context,
	org repositories.OrganizationRepository,
	project entities.Project,
	repos []entities.Repository,
	advancedSecurity bool,
) entities.ProjectRollup {
	rollup := entities.ProjectRollup{Project: project.Name}
	if ctx.Err() != nil {
		return rollup
	}

	rollup.WorkItems = org.CountWorkItems(ctx, project)
	for _, repo := range repos {
		rollup.PullRequests += org.CountPullRequests(ctx, repo)
	}

	pipelines, pipelineRepos := org.BuildDefinitions(ctx, project)
	rollup.Pipelines = pipelines
	rollup.ReposWithPipelines = len(pipelineRepos)

	hooks, consumers := org.ServiceHooks(ctx, project)
	rollup.ServiceHooks = hooks
	rollup.ConsumerTypes = consumers

	rollup.Teams = org.CountTeams(ctx, project)

	if advancedSecurity {
		for _, repo := range repos {
			secret := org.CountAlerts(ctx, repo, repositories.AlertTypeSecret)
			dependency := org.CountAlerts(ctx, repo, repositories.AlertTypeDependency)
			code := org.CountAlerts(ctx, repo, repositories.AlertTypeCode)
			rollup.SecretAlerts += secret
			rollup.DependencyAlerts += dependency
			rollup.CodeAlerts += code
			if secret+dependency+code > 0 {
				rollup.ReposWithAlerts++
			}
		}
	}

	return rollup
}

// runDeepScan clones every repository's full history and collects oversized
// blobs. Clone failures warn, land in FailedClones and contribute nothing.
func (it *ScanCommand) runDeepScan(
	ctx context.Context,
	creds repositories.CredentialSource,
	repos []entities.Repository,
	thresholdMB float64,
	concurrency int,
) (*entities.DeepScanReport, int) {
	logger.Infof("Deep scanning %d repositories for files >= %.2f MB in full history...",
		len(repos), thresholdMB)

	scanner := it.deepScans(creds)
	thresholdBytes := entities.MBToBytes(thresholdMB)
	results := make([]deepScanResult, len(repos))

	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, repo := range repos {
		group.Go(func() error {
			if ctx.Err() != nil {
				results[i] = deepScanResult{failed: true}
				return nil
			}
			logger.Debugf("Cloning %s/%s...", repo.Project, repo.Name)
			records, err := scanner.ScanRepository(ctx, repo, thresholdBytes)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warnf("Deep scan failed for %s/%s: %v", repo.Project, repo.Name, err)
				}
				results[i] = deepScanResult{failed: true}
				return nil
			}
			results[i] = deepScanResult{records: records}
			return nil
		})
	}
	_ = group.Wait()

	scan := &entities.DeepScanReport{
		ThresholdMB: thresholdMB,
		Blobs:       []entities.LargeBlobRecord{},
	}
	warnings := 0
	for i, result := range results {
		if result.failed {
			scan.FailedClones = append(scan.FailedClones, repos[i].Project+"/"+repos[i].Name)
			warnings++
			continue
		}
		scan.Blobs = append(scan.Blobs, result.records...)
	}
	scan.TotalLargeFiles = len(scan.Blobs)

	logger.Infof("Deep scan found %d large files (%d repositories failed)",
		scan.TotalLargeFiles, len(scan.FailedClones))
	return scan, warnings
}

// assembleEmptyReport builds the zero-count report for an organization with
// no projects.
func (it *ScanCommand) assembleEmptyReport(ctx context.Context, organization, connectedAs string) *entities.Report {
	report := &entities.Report{
		Organization:      organization,
		GeneratedAt:       time.Now().UTC(),
		ConnectedAs:       connectedAs,
		Repositories:      []entities.Repository{},
		LargeRepositories: []entities.RepositorySize{},
	}
	markIncomplete(ctx, report)
	return report
}

// markIncomplete flags a report assembled under a canceled context.
func markIncomplete(ctx context.Context, report *entities.Report) {
	if ctx.Err() == nil {
		return
	}
	report.Incomplete = true
	report.IncompleteReason = fmt.Sprintf("scan interrupted before completion: %v", ctx.Err())
	logger.Warnf("Scan interrupted, report is incomplete: %v", ctx.Err())
}

// filterProjects narrows the project list to a single named project when a
// filter is set.
func filterProjects(projects []entities.Project, filter string) []entities.Project {
	if filter == "" {
		return projects
	}
	var out []entities.Project
	for _, project := range projects {
		if project.Name == filter {
			out = append(out, project)
		}
	}
	return out
}

// effectiveConcurrency merges the configured pool size with the CLI
// override and clamps it to the allowed range.
func effectiveConcurrency(settings *entities.Settings, opts ScanOptions) int {
	concurrency := settings.Concurrency
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}
	if concurrency < 1 {
		concurrency = entities.DefaultConcurrency
	}
	if concurrency > entities.MaxConcurrency {
		concurrency = entities.MaxConcurrency
	}
	return concurrency
}
