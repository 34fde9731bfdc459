package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/pebble/internal/core/session"
	"github.com/example/pebble/internal/core/stage"
)

// RewriteCache implements secondary.RewriteCache in the kv table under
// session.RewriteCacheKey.
type RewriteCache struct {
	db *sql.DB
}

// NewRewriteCache creates a new SQLite rewrite cache.
func NewRewriteCache(db *sql.DB) *RewriteCache {
	return &RewriteCache{db: db}
}

// Get returns the cached rewrite for (text, s).
func (c *RewriteCache) Get(ctx context.Context, text string, s stage.Stage) (string, bool, error) {
	if s == stage.Untouched {
		return "", false, nil
	}
	var value string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", session.RewriteCacheKey(text, s)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read rewrite cache: %w", err)
	}
	return value, true, nil
}

// Put stores a rewrite. Stage 0 is the original text and is never stored.
func (c *RewriteCache) Put(ctx context.Context, text string, s stage.Stage, rewritten string) error {
	if s == stage.Untouched {
		return nil
	}
	return upsert(ctx, c.db, session.RewriteCacheKey(text, s), rewritten)
}
