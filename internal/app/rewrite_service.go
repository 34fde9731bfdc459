package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/ports/primary"
	"github.com/example/pebble/internal/ports/secondary"
	"github.com/example/pebble/internal/prompt"
)

var (
	// ErrTextRequired is returned when the request text is missing or not a string.
	ErrTextRequired = errors.New("text is required")
	// ErrInvalidStage is returned when the request stage is not numeric.
	ErrInvalidStage = errors.New("stage must be a number")
)

// RewriteSettings are the hot-swappable parts of the rewrite service.
type RewriteSettings struct {
	Temperature float64
	MaxTokens   int
	Catalog     *prompt.Catalog
}

// RewriteServiceImpl implements the RewriteService interface on a TextModel.
type RewriteServiceImpl struct {
	model  secondary.TextModel
	logger *zap.Logger

	mu       sync.RWMutex
	settings RewriteSettings
}

// NewRewriteService creates a new RewriteService.
func NewRewriteService(model secondary.TextModel, settings RewriteSettings, logger *zap.Logger) *RewriteServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Catalog == nil {
		settings.Catalog = prompt.Default()
	}
	return &RewriteServiceImpl{model: model, settings: settings, logger: logger}
}

// Update replaces the settings used by later requests.
func (s *RewriteServiceImpl) Update(settings RewriteSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.Catalog == nil {
		settings.Catalog = s.settings.Catalog
	}
	s.settings = settings
}

// Settings returns the current settings.
func (s *RewriteServiceImpl) Settings() RewriteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Mutate validates req and returns the rewritten sentence. Stage 0 echoes the
// sanitized input without calling the model.
func (s *RewriteServiceImpl) Mutate(ctx context.Context, req primary.MutateRequest) (string, error) {
	text, ok := req.Text.(string)
	if !ok || text == "" {
		return "", ErrTextRequired
	}
	n, ok := parseStage(req.Stage)
	if !ok {
		return "", ErrInvalidStage
	}
	st, _ := stage.Clamp(n)

	input := strings.TrimSpace(text)
	if input == "" {
		return "", nil
	}
	if st == stage.Untouched {
		return prompt.Sanitize(input), nil
	}

	settings := s.Settings()
	out, err := s.model.Complete(ctx, secondary.CompletionRequest{
		Prompt:      settings.Catalog.Build(input, st),
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", s.model.Name(), err)
	}

	if clean := prompt.Sanitize(out); clean != "" {
		return clean, nil
	}
	s.logger.Debug("empty completion, echoing input", zap.String("model", s.model.Name()), zap.Int("stage", int(st)))
	return prompt.Sanitize(input), nil
}

// parseStage accepts JSON numbers, numeric strings (blank is 0) and booleans.
// A nil stage means the field was missing and is rejected.
func parseStage(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

var _ primary.RewriteService = (*RewriteServiceImpl)(nil)
