// Package config loads pebble settings from .pebble.yaml, PEBBLE_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/example/pebble/internal/adapters/llm"
	"github.com/example/pebble/internal/core/cleaning"
)

// EnvPrefix namespaces environment overrides, e.g. PEBBLE_SERVER_ADDR.
const EnvPrefix = "PEBBLE"

var envReplacer = strings.NewReplacer(".", "_")

// DefaultPort is the rewrite server port when neither config nor PORT set one.
const DefaultPort = "3001"

// Config holds all runtime configuration.
type Config struct {
	DBPath   string         `mapstructure:"db_path"`
	Server   ServerConfig   `mapstructure:"server"`
	Rewrite  RewriteConfig  `mapstructure:"rewrite"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	Tick     time.Duration  `mapstructure:"tick"`
	Cleaning CleaningConfig `mapstructure:"cleaning"`
	Verbose  bool           `mapstructure:"verbose"`
}

// ServerConfig configures `pebble serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RewriteConfig points the stage engine at a rewrite server.
type RewriteConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LLMConfig selects the model behind the rewrite server.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

// PromptConfig locates an optional prompt catalog override.
type PromptConfig struct {
	Catalog string `mapstructure:"catalog"`
}

// CleaningConfig tunes the drag gesture.
type CleaningConfig struct {
	BrushRadius float64       `mapstructure:"brush_radius"`
	AreaRatio   float64       `mapstructure:"area_ratio"`
	MinDuration time.Duration `mapstructure:"min_duration"`
}

// Core converts to the gesture's own config type.
func (c CleaningConfig) Core() cleaning.Config {
	return cleaning.Config{BrushRadius: c.BrushRadius, AreaRatio: c.AreaRatio, MinDuration: c.MinDuration}
}

// Adapter converts to the llm adapter config.
func (c LLMConfig) Adapter() llm.Config {
	return llm.Config{Provider: c.Provider, Model: c.Model, APIKey: c.APIKey, BaseURL: c.BaseURL, Timeout: c.Timeout}
}

// providerKeyEnv maps a provider to the conventional env var holding its key.
var providerKeyEnv = map[string][]string{
	llm.ProviderOpenAI:    {"OPENAI_API_KEY"},
	llm.ProviderAnthropic: {"ANTHROPIC_API_KEY"},
	llm.ProviderGenAI:     {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"gemini":              {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Init points viper at cfgFile, or at .pebble.yaml in the working directory or
// home, and enables PEBBLE_* overrides. A missing config file is not an error.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".pebble")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// File returns the config file in use, or "" when running on defaults.
func File() string {
	return viper.ConfigFileUsed()
}

// SetDefaults registers built-in defaults for every key.
func SetDefaults() {
	addr := "0.0.0.0:" + DefaultPort
	if port := os.Getenv("PORT"); port != "" {
		addr = "0.0.0.0:" + port
	}

	viper.SetDefault("db_path", "~/.pebble/pebble.db")
	viper.SetDefault("server.addr", addr)
	viper.SetDefault("rewrite.endpoint", "http://localhost:"+DefaultPort+"/api/mutate")
	viper.SetDefault("rewrite.timeout", 15*time.Second)
	viper.SetDefault("llm.provider", llm.ProviderOpenAI)
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.timeout", 30*time.Second)
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 80)
	viper.SetDefault("prompt.catalog", "")
	viper.SetDefault("tick", 30*time.Second)

	c := cleaning.DefaultConfig()
	viper.SetDefault("cleaning.brush_radius", c.BrushRadius)
	viper.SetDefault("cleaning.area_ratio", c.AreaRatio)
	viper.SetDefault("cleaning.min_duration", c.MinDuration)
	viper.SetDefault("verbose", false)
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.APIKey == "" {
		for _, env := range providerKeyEnv[cfg.LLM.Provider] {
			if key := os.Getenv(env); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.Prompt.Catalog = expandHome(cfg.Prompt.Catalog)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGenAI, "gemini", llm.ProviderPassthrough:
	default:
		return fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature: %v out of range [0, 2]", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens: must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick: must be positive, got %s", c.Tick)
	}
	if c.Rewrite.Timeout <= 0 {
		return fmt.Errorf("rewrite.timeout: must be positive, got %s", c.Rewrite.Timeout)
	}
	if c.Cleaning.BrushRadius <= 0 {
		return fmt.Errorf("cleaning.brush_radius: must be positive")
	}
	if c.Cleaning.AreaRatio <= 0 || c.Cleaning.AreaRatio > 1 {
		return fmt.Errorf("cleaning.area_ratio: %v out of range (0, 1]", c.Cleaning.AreaRatio)
	}
	if c.Cleaning.MinDuration < 0 {
		return fmt.Errorf("cleaning.min_duration: must not be negative")
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
