// Package models defines data structures for configuration, page requests and job results.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkDir      = "temp_scraper_work"
	DefaultAssetTimeout = 20 * time.Second
	DefaultSettleDelay  = 5 * time.Second
	DefaultAddr         = ":5000"
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	RendererBrowser = "browser"
	RendererHTTP    = "http"
)

// Config holds runtime configuration. Values come from an optional YAML
// file and are then overridden by CLI flags.
type Config struct {
	WorkDir      string        `yaml:"work_dir"`
	AssetTimeout time.Duration `yaml:"asset_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	Renderer     string        `yaml:"renderer"` // browser or http
	UserAgent    string        `yaml:"user_agent"`
	History      bool          `yaml:"history"`
	Summaries    bool          `yaml:"summaries"` // readability summaries in job history
	DBPath       string        `yaml:"db_path,omitempty"` // empty uses the file next to the binary

	Browser BrowserConfig `yaml:"browser"`
	Server  ServerConfig  `yaml:"server"`
}

// BrowserConfig configures the headless Chrome renderer.
type BrowserConfig struct {
	RemoteURL string `yaml:"remote_url,omitempty"` // empty launches a local Chrome
	Stealth   bool   `yaml:"stealth"`
}

// ServerConfig configures the HTTP endpoint.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	CORSOrigin string `yaml:"cors_origin"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		WorkDir:      DefaultWorkDir,
		AssetTimeout: DefaultAssetTimeout,
		SettleDelay:  DefaultSettleDelay,
		Renderer:     RendererBrowser,
		UserAgent:    DefaultUserAgent,
		History:      true,
		Summaries:    true,
		Browser:      BrowserConfig{Stealth: true},
		Server: ServerConfig{
			Addr:       DefaultAddr,
			CORSOrigin: "*",
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks for values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("config: work_dir must not be empty")
	}
	if c.AssetTimeout <= 0 {
		return fmt.Errorf("config: asset_timeout must be positive, got %s", c.AssetTimeout)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("config: settle_delay must not be negative, got %s", c.SettleDelay)
	}
	switch c.Renderer {
	case RendererBrowser, RendererHTTP:
	default:
		return fmt.Errorf("config: unknown renderer %q (want %q or %q)", c.Renderer, RendererBrowser, RendererHTTP)
	}
	return nil
}
