package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

// SqliteSnapshotRepository persists scan summaries in a local SQLite file so
// successive audits of the same organization can be compared over time.
type SqliteSnapshotRepository struct {
	conn *sql.DB
}

// NewSqliteSnapshotRepository opens (or creates) the snapshot store at the
// given path and migrates its schema.
func NewSqliteSnapshotRepository(path string) (repositories.SnapshotRepository, error) {
	conn, err := openDatabase(path)
	if err != nil {
		return nil, err
	}
	return &SqliteSnapshotRepository{conn: conn}, nil
}

// NewInMemorySnapshotRepository opens a throwaway store, useful for testing.
func NewInMemorySnapshotRepository() (repositories.SnapshotRepository, error) {
	conn, err := openInMemoryDatabase()
	if err != nil {
		return nil, err
	}
	return &SqliteSnapshotRepository{conn: conn}, nil
}

func (s *SqliteSnapshotRepository) Save(ctx context.Context, report *entities.Report) (int64, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("encoding report: %w", err)
	}

	result, err := s.conn.ExecContext(ctx,
		`INSERT INTO scan_snapshots
		(taken_at, organization, project_count, repo_count, large_repo_count,
		 work_items, pull_requests, pipelines, service_hooks, teams,
		 user_count, incomplete, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.GeneratedAt.UTC().Format(time.RFC3339), report.Organization,
		report.ProjectCount, report.RepoCount, report.LargeRepoCount,
		report.Rollups.WorkItems, report.Rollups.PullRequests,
		report.Rollups.Pipelines, report.Rollups.ServiceHooks,
		report.Rollups.Teams, report.UserCount, report.Incomplete,
		string(body),
	)
	if err != nil {
		return 0, fmt.Errorf("saving snapshot: %w", err)
	}
	return result.LastInsertId()
}

func (s *SqliteSnapshotRepository) List(ctx context.Context, limit int) ([]entities.SnapshotRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, taken_at, organization, project_count, repo_count,
		 large_repo_count, work_items, pull_requests, pipelines,
		 service_hooks, teams, user_count, incomplete
		FROM scan_snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []entities.SnapshotRecord
	for rows.Next() {
		var record entities.SnapshotRecord
		var takenAt string
		if err := rows.Scan(&record.ID, &takenAt, &record.Organization,
			&record.ProjectCount, &record.RepoCount, &record.LargeRepoCount,
			&record.WorkItems, &record.PullRequests, &record.Pipelines,
			&record.ServiceHooks, &record.Teams, &record.UserCount,
			&record.Incomplete); err != nil {
			return nil, fmt.Errorf("reading snapshot row: %w", err)
		}
		record.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SqliteSnapshotRepository) Close() error {
	return s.conn.Close()
}
