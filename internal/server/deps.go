// Package server exposes the rewrite proxy and the archive over HTTP.
package server

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/ports/primary"
)

// ArchiveReader is the read side of the pebble service used by the archive endpoints.
type ArchiveReader interface {
	Archive(ctx context.Context, limit int) ([]*archive.Stone, error)
	Stone(ctx context.Context, id string) (*archive.Stone, error)
}

// Deps holds handler dependencies.
type Deps struct {
	Rewrite primary.RewriteService
	Archive ArchiveReader // optional
	Logger  *zap.Logger
}
