package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/pebble/internal/ports/secondary"
)

// ActivityLog implements secondary.ActivityLog with SQLite.
type ActivityLog struct {
	db *sql.DB
}

// NewActivityLog creates a new SQLite activity log.
func NewActivityLog(db *sql.DB) *ActivityLog {
	return &ActivityLog{db: db}
}

// Record appends rec and fills in its ID.
func (l *ActivityLog) Record(ctx context.Context, rec *secondary.ActivityRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var detail sql.NullString
	if rec.Detail != "" {
		detail = sql.NullString{String: rec.Detail, Valid: true}
	}

	return withTx(ctx, l.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO activity (kind, detail, stage, created_ms) VALUES (?, ?, ?, ?)",
			rec.Kind, detail, rec.Stage, rec.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read activity id: %w", err)
		}
		rec.ID = id
		return nil
	})
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (l *ActivityLog) List(ctx context.Context, limit int) ([]*secondary.ActivityRecord, error) {
	query := "SELECT id, kind, detail, stage, created_ms FROM activity ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ActivityRecord
	for rows.Next() {
		var (
			rec       secondary.ActivityRecord
			detail    sql.NullString
			createdMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Kind, &detail, &rec.Stage, &createdMs); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		rec.Detail = detail.String
		rec.CreatedAt = time.UnixMilli(createdMs)
		records = append(records, &rec)
	}

	return records, rows.Err()
}
