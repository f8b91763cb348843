package db

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath is the default database: a shared in-memory SQLite that lives
// as long as the process.
const MemoryPath = "file:quizgen?mode=memory&cache=shared"

type Database struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and applies the schema.
func NewSQLite(path string) (*Database, error) {
	if path == "" {
		path = MemoryPath
	}
	sqlDB, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	// A single connection keeps an in-memory database alive and avoids
	// SQLITE_BUSY between the job workers and API handlers.
	sqlDB.SetMaxOpenConns(1)

	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if strings.Contains(path, "mode=memory") || path == ":memory:" {
		return path + sep + "_busy_timeout=5000"
	}
	return path + sep + "_journal_mode=WAL&_busy_timeout=5000"
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		ref TEXT NOT NULL DEFAULT '',
		params TEXT NOT NULL,
		progress REAL DEFAULT 0,
		stage TEXT NOT NULL DEFAULT '',
		result TEXT,
		error TEXT,
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		started_at DATETIME,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status_created ON jobs (status, created_at);
	`
	_, err := d.db.Exec(schema)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for use by other packages (e.g., job queue)
func (d *Database) DB() *sql.DB {
	return d.db
}
