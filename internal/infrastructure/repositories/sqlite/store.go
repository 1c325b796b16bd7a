package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// openDatabase opens or creates the SQLite database at the given path,
// creating the parent directory if it does not exist.
func openDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}

	// WAL keeps the store readable while a scan is writing.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := migrate(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// openInMemoryDatabase opens a throwaway in-memory store, useful for testing.
func openInMemoryDatabase() (*sql.DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := migrate(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// migrate runs forward migrations to bring the schema up to date.
func migrate(conn *sql.DB) error {
	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := migrateV1(conn); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the snapshot table and its index.
func migrateV1(conn *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scan_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at         TEXT NOT NULL,
			organization     TEXT NOT NULL,
			project_count    INTEGER NOT NULL,
			repo_count       INTEGER NOT NULL,
			large_repo_count INTEGER NOT NULL,
			work_items       INTEGER NOT NULL,
			pull_requests    INTEGER NOT NULL,
			pipelines        INTEGER NOT NULL,
			service_hooks    INTEGER NOT NULL,
			teams            INTEGER NOT NULL,
			user_count       INTEGER NOT NULL,
			incomplete       BOOLEAN NOT NULL,
			report_json      TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scan_snapshots_taken_at
			ON scan_snapshots(taken_at)`,

		`DELETE FROM schema_version`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}

	_, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	return err
}
