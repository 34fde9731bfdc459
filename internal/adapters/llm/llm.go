// Package llm provides TextModel adapters for the hosted language models the
// rewrite server can call.
package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/pebble/internal/ports/secondary"
)

// Provider names accepted by New.
const (
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGenAI       = "genai"
	ProviderPassthrough = "passthrough"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string // optional endpoint override
	Timeout  time.Duration
}

// New builds the TextModel for cfg.Provider.
func New(cfg Config) (secondary.TextModel, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	case ProviderGenAI, "gemini":
		return NewGenAI(cfg)
	case ProviderPassthrough:
		return Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
