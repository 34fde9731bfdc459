// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// StateStore implements secondary.StateStore over the kv table.
type StateStore struct {
	db *sql.DB
}

// NewStateStore creates a new SQLite state store.
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Load returns the stored values for keys. Absent keys are omitted.
func (s *StateStore) Load(ctx context.Context, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM kv WHERE key IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

// Apply writes set and removes remove in a single transaction.
func (s *StateStore) Apply(ctx context.Context, set map[string]string, remove []string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for k, v := range set {
			if err := upsert(ctx, tx, k, v); err != nil {
				return err
			}
		}
		for _, k := range remove {
			if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", k); err != nil {
				return fmt.Errorf("failed to delete %s: %w", k, err)
			}
		}
		return nil
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, ex execer, key, value string) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
