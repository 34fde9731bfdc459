package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/goleak"

	"github.com/example/pebble/internal/core/cleaning"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".pebble.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	home, _ := os.UserHomeDir()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"DBPath", cfg.DBPath, filepath.Join(home, ".pebble", "pebble.db")},
		{"Server.Addr", cfg.Server.Addr, "0.0.0.0:3001"},
		{"Rewrite.Endpoint", cfg.Rewrite.Endpoint, "http://localhost:3001/api/mutate"},
		{"Rewrite.Timeout", cfg.Rewrite.Timeout, 15 * time.Second},
		{"LLM.Provider", cfg.LLM.Provider, "openai"},
		{"LLM.Model", cfg.LLM.Model, ""},
		{"LLM.APIKey", cfg.LLM.APIKey, ""},
		{"LLM.Temperature", cfg.LLM.Temperature, 0.2},
		{"LLM.MaxTokens", cfg.LLM.MaxTokens, 80},
		{"Prompt.Catalog", cfg.Prompt.Catalog, ""},
		{"Tick", cfg.Tick, 30 * time.Second},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if got := cfg.Cleaning.Core(); got != cleaning.DefaultConfig() {
		t.Errorf("Cleaning = %+v, want %+v", got, cleaning.DefaultConfig())
	}
}

func TestLoad_PortEnv(t *testing.T) {
	resetViper(t)
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Server.Addr = %q, want 0.0.0.0:8080", cfg.Server.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "server addr",
			envKey: "PEBBLE_SERVER_ADDR",
			envVal: "127.0.0.1:9000",
			field:  func(c Config) any { return c.Server.Addr },
			want:   "127.0.0.1:9000",
		},
		{
			name:   "provider",
			envKey: "PEBBLE_LLM_PROVIDER",
			envVal: "Passthrough",
			field:  func(c Config) any { return c.LLM.Provider },
			want:   "passthrough",
		},
		{
			name:   "max tokens",
			envKey: "PEBBLE_LLM_MAX_TOKENS",
			envVal: "120",
			field:  func(c Config) any { return c.LLM.MaxTokens },
			want:   120,
		},
		{
			name:   "tick",
			envKey: "PEBBLE_TICK",
			envVal: "5s",
			field:  func(c Config) any { return c.Tick },
			want:   5 * time.Second,
		},
		{
			name:   "verbose",
			envKey: "PEBBLE_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
		{
			name:   "openai key",
			envKey: "OPENAI_API_KEY",
			envVal: "sk-test",
			field:  func(c Config) any { return c.LLM.APIKey },
			want:   "sk-test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.SetEnvPrefix(EnvPrefix)
			viper.SetEnvKeyReplacer(envReplacer)
			viper.AutomaticEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got := tt.field(cfg); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_ProviderKeyFallback(t *testing.T) {
	resetViper(t)
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("OPENAI_API_KEY", "oai-key")
	viper.Set("llm.provider", "anthropic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LLM.APIKey != "ant-key" {
		t.Errorf("APIKey = %q, want ant-key", cfg.LLM.APIKey)
	}

	viper.Set("llm.api_key", "explicit")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LLM.APIKey != "explicit" {
		t.Errorf("APIKey = %q, want explicit", cfg.LLM.APIKey)
	}
}

func TestInit_ReadsFile(t *testing.T) {
	resetViper(t)
	path := writeConfig(t, t.TempDir(), `
db_path: /tmp/pebble-test.db
llm:
  provider: passthrough
  temperature: 0.7
cleaning:
  area_ratio: 0.5
  min_duration: 2s
`)

	if err := Init(path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if File() != path {
		t.Errorf("File() = %q, want %q", File(), path)
	}
	if cfg.DBPath != "/tmp/pebble-test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.LLM.Provider != "passthrough" || cfg.LLM.Temperature != 0.7 {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Cleaning.AreaRatio != 0.5 || cfg.Cleaning.MinDuration != 2*time.Second {
		t.Errorf("Cleaning = %+v", cfg.Cleaning)
	}
	if cfg.Cleaning.BrushRadius != 22 {
		t.Errorf("BrushRadius = %v, want default 22", cfg.Cleaning.BrushRadius)
	}
}

func TestInit_MissingFileIsFine(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	if err := Init(""); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if File() != "" {
		t.Errorf("File() = %q, want empty", File())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  any
		errStr string
	}{
		{"unknown provider", "llm.provider", "mystery", "llm.provider"},
		{"temperature too high", "llm.temperature", 3.0, "llm.temperature"},
		{"zero max tokens", "llm.max_tokens", 0, "llm.max_tokens"},
		{"zero tick", "tick", "0s", "tick"},
		{"area ratio above one", "cleaning.area_ratio", 1.5, "cleaning.area_ratio"},
		{"negative brush", "cleaning.brush_radius", -1, "cleaning.brush_radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.Set(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errStr) {
				t.Errorf("error %q should mention %q", err, tt.errStr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/x/pebble.db"); got != filepath.Join(home, "x", "pebble.db") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/pebble.db"); got != "/abs/pebble.db" {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("~other/pebble.db"); got != "~other/pebble.db" {
		t.Errorf("expandHome = %q", got)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	resetViper(t)
	path := writeConfig(t, t.TempDir(), "llm:\n  temperature: 0.2\n")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c Config) { changes <- c })
	}()

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, filepath.Dir(path), "llm:\n  temperature: 0.9\n  max_tokens: 40\n")

	select {
	case c := <-changes:
		if c.LLM.Temperature != 0.9 || c.LLM.MaxTokens != 40 {
			t.Errorf("reloaded LLM = %+v", c.LLM)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error: %v", err)
	}
}

func TestWatch_SkipsInvalidEdit(t *testing.T) {
	resetViper(t)
	path := writeConfig(t, t.TempDir(), "tick: 30s\n")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c Config) { changes <- c })
	}()

	time.Sleep(100 * time.Millisecond)
	writeConfig(t, filepath.Dir(path), "tick: 0s\n")

	select {
	case c := <-changes:
		t.Errorf("unexpected reload: %+v", c)
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	<-done
}
