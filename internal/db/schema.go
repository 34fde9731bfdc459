package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository tests
// load it through GetSchemaSQL() instead of declaring their own tables.
const SchemaSQL = `
-- Persistence boundary: string keys and string values
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Archive of finished stones (newest = highest seq)
CREATE TABLE IF NOT EXISTS archived_stones (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL UNIQUE,
	text TEXT NOT NULL,
	created_ms INTEGER NOT NULL,
	finished_ms INTEGER NOT NULL,
	day_count INTEGER NOT NULL CHECK(day_count >= 1),
	snapshot BLOB
);

CREATE INDEX IF NOT EXISTS idx_archived_stones_seq ON archived_stones(seq DESC);

-- Activity history
CREATE TABLE IF NOT EXISTS activity (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL CHECK(kind IN ('start', 'clean', 'finish', 'abandon', 'repair')),
	detail TEXT,
	stage INTEGER NOT NULL DEFAULT 0,
	created_ms INTEGER NOT NULL
);
`

// InitSchema creates the schema on a fresh database and runs pending migrations
// on an existing one.
func InitSchema(conn *sql.DB) error {
	var tableCount int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		if _, err := conn.Exec(SchemaSQL); err != nil {
			return err
		}
		if err := createVersionTable(conn); err != nil {
			return err
		}
		// Fresh installs start at the latest version; only the legacy import runs.
		for _, m := range migrations {
			if m.Fresh {
				continue
			}
			if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("failed to mark migration %d: %w", m.Version, err)
			}
		}
	}

	return RunMigrations(conn)
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
