package secondary

import (
	"context"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/stage"
)

// RewriteClient defines the secondary port for the remote rewrite collaborator
// consumed by the stage engine.
type RewriteClient interface {
	// Rewrite returns text rephrased for stage s.
	Rewrite(ctx context.Context, text string, s stage.Stage) (string, error)
}

// TextModel defines the secondary port for a language model completion.
type TextModel interface {
	// Complete returns the model's raw text for req.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Name identifies the provider and model, e.g. "openai:gpt-4o-mini".
	Name() string
}

// CompletionRequest contains parameters for a single completion.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// SnapshotRenderer defines the secondary port that flattens the pebble's visual
// state into a static image.
type SnapshotRenderer interface {
	// Render returns PNG bytes for spec.
	Render(spec archive.SnapshotSpec) ([]byte, error)
}
