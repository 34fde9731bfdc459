package llm

import (
	"context"
	"strings"

	"github.com/example/pebble/internal/ports/secondary"
)

// Passthrough is a TextModel that returns the original text from the prompt.
// It lets the server run without credentials.
type Passthrough struct{}

// Name implements secondary.TextModel.
func (Passthrough) Name() string { return ProviderPassthrough }

// Complete returns the line following the "Original" heading.
func (Passthrough) Complete(ctx context.Context, req secondary.CompletionRequest) (string, error) {
	lines := strings.Split(req.Prompt, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "Original" && i+1 < len(lines) {
			return lines[i+1], nil
		}
	}
	return "", nil
}
