package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/ports/secondary"
)

// ArchiveRepository implements secondary.ArchiveRepository with SQLite.
type ArchiveRepository struct {
	db *sql.DB
}

// NewArchiveRepository creates a new SQLite archive repository.
func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Prepend stores stone as the newest entry.
func (r *ArchiveRepository) Prepend(ctx context.Context, stone *archive.Stone) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var maxSeq int64
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM archived_stones").Scan(&maxSeq); err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO archived_stones (id, seq, text, created_ms, finished_ms, day_count, snapshot) VALUES (?, ?, ?, ?, ?, ?, ?)",
			stone.ID, maxSeq+1, stone.Text, stone.Created.UnixMilli(), stone.Finished.UnixMilli(), stone.DayCount, stone.Snapshot,
		)
		if err != nil {
			return fmt.Errorf("failed to archive stone: %w", err)
		}
		return nil
	})
}

// List retrieves stones newest first. Snapshot bytes are not loaded.
func (r *ArchiveRepository) List(ctx context.Context, filters secondary.ArchiveFilters) ([]*archive.Stone, error) {
	query := "SELECT id, text, created_ms, finished_ms, day_count FROM archived_stones ORDER BY seq DESC"
	args := []any{}

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	defer rows.Close()

	var stones []*archive.Stone
	for rows.Next() {
		var (
			stone      archive.Stone
			createdMs  int64
			finishedMs int64
		)
		if err := rows.Scan(&stone.ID, &stone.Text, &createdMs, &finishedMs, &stone.DayCount); err != nil {
			return nil, fmt.Errorf("failed to scan stone: %w", err)
		}
		stone.Created = time.UnixMilli(createdMs)
		stone.Finished = time.UnixMilli(finishedMs)
		stones = append(stones, &stone)
	}

	return stones, rows.Err()
}

// GetByID retrieves a stone including its snapshot.
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*archive.Stone, error) {
	var (
		stone      archive.Stone
		createdMs  int64
		finishedMs int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, text, created_ms, finished_ms, day_count, snapshot FROM archived_stones WHERE id = ?",
		id,
	).Scan(&stone.ID, &stone.Text, &createdMs, &finishedMs, &stone.DayCount, &stone.Snapshot)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stone %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stone: %w", err)
	}

	stone.Created = time.UnixMilli(createdMs)
	stone.Finished = time.UnixMilli(finishedMs)
	return &stone, nil
}
