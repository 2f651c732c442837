package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 3

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createAnalysisRunsTable(tx); err != nil {
			return err
		}
		if err := createAnalysisIssuesTable(tx); err != nil {
			return err
		}
		if err := createFetchedReposTable(tx); err != nil {
			return err
		}
		if err := createAnalysisCacheTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", "version", version)
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)

	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if version < 1 {
			if err := createSchemaVersionTable(tx); err != nil {
				return err
			}
			if err := createAnalysisRunsTable(tx); err != nil {
				return err
			}
			if err := createAnalysisIssuesTable(tx); err != nil {
				return err
			}
		}
		// v2 moved the fetched repository log into the database.
		if version < 2 {
			if err := createFetchedReposTable(tx); err != nil {
				return err
			}
		}
		if version < 3 {
			if err := createAnalysisCacheTable(tx); err != nil {
				return err
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// getSchemaVersion gets the current schema version, 0 for an empty database
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createAnalysisRunsTable creates the analysis_runs table. Source and
// optimized text are stored zstd-compressed.
func createAnalysisRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			source_name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			issue_count INTEGER NOT NULL,
			original_emissions REAL NOT NULL,
			optimized_emissions REAL NOT NULL,
			reduction REAL NOT NULL,
			source_bytes INTEGER NOT NULL,
			source_blob BLOB NOT NULL,
			optimized_blob BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create analysis_runs table: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs(created_at)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func createAnalysisIssuesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_issues (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			line INTEGER NOT NULL,
			kind TEXT NOT NULL,
			message TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			suggestion TEXT NOT NULL,

			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create analysis_issues table: %w", err)
	}
	return nil
}

func createFetchedReposTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS fetched_repos (
			name TEXT PRIMARY KEY,
			fetched_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fetched_repos table: %w", err)
	}
	return nil
}

func createAnalysisCacheTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			key TEXT PRIMARY KEY,
			value_json TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create analysis_cache table: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_analysis_cache_expires ON analysis_cache(expires_at)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}
