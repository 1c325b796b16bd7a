package entities

import (
	"sort"
	"time"
)

// ProjectRollup is the per-project accumulator for the migration counters.
// Each worker fills exactly one ProjectRollup; the fold into organization
// totals happens after the join, so no counter is ever shared between
// workers.
type ProjectRollup struct {
	Project            string   `json:"project"`
	WorkItems          int      `json:"workItems"`
	PullRequests       int      `json:"pullRequests"`
	Pipelines          int      `json:"pipelines"`
	ReposWithPipelines int      `json:"reposWithPipelines"`
	ServiceHooks       int      `json:"serviceHooks"`
	ConsumerTypes      []string `json:"consumerTypes,omitempty"`
	Teams              int      `json:"teams"`
	SecretAlerts       int      `json:"secretAlerts"`
	DependencyAlerts   int      `json:"dependencyAlerts"`
	CodeAlerts         int      `json:"codeAlerts"`
	ReposWithAlerts    int      `json:"reposWithAlerts"`
}

// RollupTotals is the organization-wide sum of all project rollups.
type RollupTotals struct {
	WorkItems               int  `json:"workItems"`
	PullRequests            int  `json:"pullRequests"`
	Pipelines               int  `json:"pipelines"`
	ReposWithPipelines      int  `json:"reposWithPipelines"`
	ServiceHooks            int  `json:"serviceHooks"`
	Teams                   int  `json:"teams"`
	ProjectsWithTeams       int  `json:"projectsWithTeams"`
	SecretAlerts            int  `json:"secretAlerts"`
	DependencyAlerts        int  `json:"dependencyAlerts"`
	CodeAlerts              int  `json:"codeAlerts"`
	ReposWithAlerts         int  `json:"reposWithAlerts"`
	AdvancedSecurityEnabled bool `json:"advancedSecurityEnabled"`
}

// SumRollups folds per-project rollups into organization totals and returns
// the sorted set of distinct hook consumer types seen across all projects.
func SumRollups(rollups []ProjectRollup) (RollupTotals, []string) {
	var totals RollupTotals
	consumers := make(map[string]struct{})

	for _, r := range rollups {
		totals.WorkItems += r.WorkItems
		totals.PullRequests += r.PullRequests
		totals.Pipelines += r.Pipelines
		totals.ReposWithPipelines += r.ReposWithPipelines
		totals.ServiceHooks += r.ServiceHooks
		totals.Teams += r.Teams
		totals.SecretAlerts += r.SecretAlerts
		totals.DependencyAlerts += r.DependencyAlerts
		totals.CodeAlerts += r.CodeAlerts
		totals.ReposWithAlerts += r.ReposWithAlerts

		if r.Teams > 0 {
			totals.ProjectsWithTeams++
		}
		for _, c := range r.ConsumerTypes {
			consumers[c] = struct{}{}
		}
	}

	types := make([]string, 0, len(consumers))
	for c := range consumers {
		types = append(types, c)
	}
	sort.Strings(types)

	return totals, types
}

// RepositorySize is a presentation row for size-based findings: the
// threshold filter output and the largest-repository winner. SizeGiB is
// truncated to two decimals, never rounded.
type RepositorySize struct {
	Project   string  `json:"project"`
	Name      string  `json:"name"`
	SizeBytes uint64  `json:"sizeBytes"`
	SizeGiB   float64 `json:"sizeGiB"`
}

// NewRepositorySize builds the presentation row for a repository.
func NewRepositorySize(repo Repository) RepositorySize {
	return RepositorySize{
		Project:   repo.Project,
		Name:      repo.Name,
		SizeBytes: repo.Size(),
		SizeGiB:   SizeGiB(repo.Size()),
	}
}

// DeepScanReport is the optional deep-scan section of the report, nil when
// the scan ran without --deep-scan.
type DeepScanReport struct {
	ThresholdMB     float64           `json:"thresholdMB"`
	TotalLargeFiles int               `json:"totalLargeFiles"`
	FailedClones    []string          `json:"failedClones,omitempty"`
	Blobs           []LargeBlobRecord `json:"blobs"`
}

// Report is the single terminal artifact of a scan. It is assembled once at
// the join point and never mutated afterwards; nil pointer sections mean
// "no data", which reporters must render explicitly rather than omit.
type Report struct {
	Organization      string           `json:"organization"`
	GeneratedAt       time.Time        `json:"generatedAt"`
	ConnectedAs       string           `json:"connectedAs,omitempty"`
	ProjectCount      int              `json:"projectCount"`
	RepoCount         int              `json:"repoCount"`
	Repositories      []Repository     `json:"repositories"`
	SkippedProjects   []string         `json:"skippedProjects,omitempty"`
	LargeRepoCount    int              `json:"largeRepoCount"`
	LargeRepositories []RepositorySize `json:"largeRepositories"`
	LargestRepository *RepositorySize  `json:"largestRepository"`
	OldestRepository  *CommitRecord    `json:"oldestRepository"`
	CommitRanking     []CommitRecord   `json:"oldestCommitRanking,omitempty"`
	Rollups           RollupTotals     `json:"rollups"`
	HookConsumerTypes []string         `json:"hookConsumerTypes,omitempty"`
	Users             []UserRecord     `json:"users,omitempty"`
	UserCount         int              `json:"userCount"`
	DeepScan          *DeepScanReport  `json:"deepScan,omitempty"`
	Warnings          int              `json:"warnings"`
	Incomplete        bool             `json:"incomplete,omitempty"`
	IncompleteReason  string           `json:"incompleteReason,omitempty"`
}

// SnapshotRecord is the persisted summary of one completed scan.
type SnapshotRecord struct {
	ID             int64     `json:"id"`
	TakenAt        time.Time `json:"takenAt"`
	Organization   string    `json:"organization"`
	ProjectCount   int       `json:"projectCount"`
	RepoCount      int       `json:"repoCount"`
	LargeRepoCount int       `json:"largeRepoCount"`
	WorkItems      int       `json:"workItems"`
	PullRequests   int       `json:"pullRequests"`
	Pipelines      int       `json:"pipelines"`
	ServiceHooks   int       `json:"serviceHooks"`
	Teams          int       `json:"teams"`
	UserCount      int       `json:"userCount"`
	Incomplete     bool      `json:"incomplete"`
}
