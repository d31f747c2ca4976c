package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/pricing"
)

const (
	defaultPricingTimeoutSeconds = 30
	defaultDebounceMS            = 500
	defaultPollIntervalSeconds   = 30
)

type PricingConfig struct {
	URL            string `json:"url"`
	File           string `json:"file,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SourceConfig controls one tool's log discovery. Empty Patterns means the
// tool's built-in locations.
type SourceConfig struct {
	Enabled  bool     `json:"enabled"`
	Patterns []string `json:"patterns,omitempty"`
}

type OpenCodeSourceConfig struct {
	SourceConfig
	// DBPath points at OpenCode's SQLite store. Empty uses the default
	// location; "-" disables database reads.
	DBPath string `json:"db_path,omitempty"`
}

type SourcesConfig struct {
	Claude   SourceConfig         `json:"claude"`
	Codex    SourceConfig         `json:"codex"`
	OpenCode OpenCodeSourceConfig `json:"opencode"`
}

type WatchConfig struct {
	DebounceMS          int `json:"debounce_ms"`
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

type Config struct {
	Pricing PricingConfig `json:"pricing"`
	Sources SourcesConfig `json:"sources"`
	Watch   WatchConfig   `json:"watch"`
}

func DefaultConfig() Config {
	return Config{
		Pricing: PricingConfig{
			URL:            pricing.LiteLLMURL,
			TimeoutSeconds: defaultPricingTimeoutSeconds,
		},
		Sources: SourcesConfig{
			Claude:   SourceConfig{Enabled: true},
			Codex:    SourceConfig{Enabled: true},
			OpenCode: OpenCodeSourceConfig{SourceConfig: SourceConfig{Enabled: true}},
		},
		Watch: WatchConfig{
			DebounceMS:          defaultDebounceMS,
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
	}
}

// Source returns the discovery settings for tool.
func (c Config) Source(tool core.Tool) SourceConfig {
	switch tool {
	case core.ToolClaude:
		return c.Sources.Claude
	case core.ToolCodex:
		return c.Sources.Codex
	case core.ToolOpenCode:
		return c.Sources.OpenCode.SourceConfig
	}
	return SourceConfig{}
}

func (c *Config) setSourceEnabled(tool core.Tool, enabled bool) bool {
	switch tool {
	case core.ToolClaude:
		c.Sources.Claude.Enabled = enabled
	case core.ToolCodex:
		c.Sources.Codex.Enabled = enabled
	case core.ToolOpenCode:
		c.Sources.OpenCode.Enabled = enabled
	default:
		return false
	}
	return true
}

func (p PricingConfig) Source() pricing.Source {
	return pricing.Source{
		URL:     p.URL,
		File:    p.File,
		Timeout: time.Duration(p.TimeoutSeconds) * time.Second,
	}
}

func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

func (w WatchConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalSeconds) * time.Second
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "usagescan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "usagescan")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if strings.TrimSpace(cfg.Pricing.URL) == "" {
		cfg.Pricing.URL = pricing.LiteLLMURL
	}
	if cfg.Pricing.TimeoutSeconds <= 0 {
		cfg.Pricing.TimeoutSeconds = defaultPricingTimeoutSeconds
	}
	if cfg.Watch.DebounceMS < 0 {
		cfg.Watch.DebounceMS = defaultDebounceMS
	}
	if cfg.Watch.PollIntervalSeconds <= 0 {
		cfg.Watch.PollIntervalSeconds = defaultPollIntervalSeconds
	}

	return cfg, nil
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveSourceEnabled toggles a tool in the config file (read-modify-write).
func SaveSourceEnabled(tool core.Tool, enabled bool) error {
	return SaveSourceEnabledTo(ConfigPath(), tool, enabled)
}

func SaveSourceEnabledTo(path string, tool core.Tool, enabled bool) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	if !cfg.setSourceEnabled(tool, enabled) {
		return fmt.Errorf("unknown tool %q", tool)
	}
	return SaveTo(path, cfg)
}
