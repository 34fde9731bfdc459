package db

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	// Fresh migrations also run on a brand new database.
	Fresh bool
	Up    func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "import_legacy_book_json",
		Fresh:   true,
		Up:      migrationV2,
	},
}

// LegacyBookKey is the key under which the archive used to be stored as a
// single JSON list.
const LegacyBookKey = "pebble_book_v1"

func createVersionTable(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations
func RunMigrations(conn *sql.DB) error {
	if err := createVersionTable(conn); err != nil {
		return err
	}

	var currentVersion int
	err := conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the tables for databases that predate schema_version.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(SchemaSQL)
	return err
}

// legacyBookEntry is one element of the old JSON book.
type legacyBookEntry struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Created  int64  `json:"created"`
	Finished int64  `json:"finished"`
	D        int    `json:"d"`
	Snapshot string `json:"snapshot"` // data:image/png;base64,...
}

// migrationV2 moves a JSON book stored under LegacyBookKey into archived_stones.
// The JSON list is newest first.
func migrationV2(tx *sql.Tx) error {
	var raw string
	err := tx.QueryRow("SELECT value FROM kv WHERE key = ?", LegacyBookKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	var book []legacyBookEntry
	if err := json.Unmarshal([]byte(raw), &book); err != nil {
		// An unreadable book is dropped rather than blocking startup.
		book = nil
	}

	var maxSeq int
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM archived_stones").Scan(&maxSeq); err != nil {
		return err
	}

	for i := len(book) - 1; i >= 0; i-- {
		e := book[i]
		if strings.TrimSpace(e.Text) == "" || e.ID == "" {
			continue
		}
		day := e.D
		if day < 1 {
			day = 1
		}
		maxSeq++
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO archived_stones (id, seq, text, created_ms, finished_ms, day_count, snapshot) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.ID, maxSeq, e.Text, e.Created, e.Finished, day, decodeDataURL(e.Snapshot),
		)
		if err != nil {
			return fmt.Errorf("failed to import stone %s: %w", e.ID, err)
		}
	}

	_, err = tx.Exec("DELETE FROM kv WHERE key = ?", LegacyBookKey)
	return err
}

func decodeDataURL(s string) []byte {
	i := strings.Index(s, ";base64,")
	if i < 0 {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(s[i+len(";base64,"):])
	if err != nil {
		return nil
	}
	return b
}
