// Package app wires configuration, logging and the clone pipeline for the
// CLI commands.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dtnitsch/site-cloner/models"
	"github.com/dtnitsch/site-cloner/pkg/artifact_manager"
	"github.com/dtnitsch/site-cloner/pkg/db"
	"github.com/dtnitsch/site-cloner/pkg/fetcher"
	"github.com/dtnitsch/site-cloner/pkg/job"
	"github.com/dtnitsch/site-cloner/pkg/renderer"
	"github.com/urfave/cli/v2"
)

// RuntimeFlags are shared by every command that runs clone jobs.
func RuntimeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"SITE_CLONER_CONFIG"}},
		&cli.StringFlag{Name: "work-dir", Usage: "root for per-job working directories", EnvVars: []string{"SITE_CLONER_WORK_DIR"}},
		&cli.StringFlag{Name: "renderer", Usage: "page renderer: browser or http", EnvVars: []string{"SITE_CLONER_RENDERER"}},
		&cli.DurationFlag{Name: "settle-delay", Usage: "wait after page load before capturing the DOM", EnvVars: []string{"SITE_CLONER_SETTLE_DELAY"}},
		&cli.DurationFlag{Name: "asset-timeout", Usage: "per-asset download timeout", EnvVars: []string{"SITE_CLONER_ASSET_TIMEOUT"}},
		&cli.StringFlag{Name: "user-agent", Usage: "User-Agent for page and asset requests", EnvVars: []string{"SITE_CLONER_USER_AGENT"}},
		&cli.StringFlag{Name: "remote-browser", Usage: "DevTools URL of an external Chrome", EnvVars: []string{"SITE_CLONER_REMOTE_BROWSER"}},
		&cli.BoolFlag{Name: "no-stealth", Usage: "disable stealth evasions in the browser renderer"},
		&cli.StringFlag{Name: "db", Usage: "job history database path", EnvVars: []string{"SITE_CLONER_DB"}},
		&cli.BoolFlag{Name: "no-history", Usage: "do not record jobs in the database"},
		&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error", EnvVars: []string{"SITE_CLONER_LOG_LEVEL"}},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	}
}

// NewLogger returns the JSON logger for a command.
func NewLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if c.Bool("quiet") {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadConfig reads --config and applies explicitly set flags on top.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("work-dir") {
		cfg.WorkDir = c.String("work-dir")
	}
	if c.IsSet("renderer") {
		cfg.Renderer = c.String("renderer")
	}
	if c.IsSet("settle-delay") {
		cfg.SettleDelay = c.Duration("settle-delay")
	}
	if c.IsSet("asset-timeout") {
		cfg.AssetTimeout = c.Duration("asset-timeout")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("remote-browser") {
		cfg.Browser.RemoteURL = c.String("remote-browser")
	}
	if c.Bool("no-stealth") {
		cfg.Browser.Stealth = false
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.Bool("no-history") {
		cfg.History = false
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("cors-origin") {
		cfg.Server.CORSOrigin = c.String("cors-origin")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Runtime holds everything a command needs to run clone jobs.
type Runtime struct {
	Config       *models.Config
	Orchestrator *job.Orchestrator
	DB           *db.DB // nil when history is disabled

	closer interface{ Close() error }
}

// NewRuntime builds the renderer, fetcher, optional job history and the
// orchestrator from cfg.
func NewRuntime(cfg *models.Config, logger *slog.Logger) (*Runtime, error) {
	trees, err := artifact_manager.NewManager(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize work dir: %w", err)
	}

	rt := &Runtime{Config: cfg}

	var r renderer.Renderer
	switch cfg.Renderer {
	case models.RendererHTTP:
		r = renderer.NewHTTPRenderer(cfg.AssetTimeout, cfg.UserAgent, logger)
	default:
		br := renderer.NewBrowserRenderer(renderer.BrowserConfig{
			RemoteURL:   cfg.Browser.RemoteURL,
			SettleDelay: cfg.SettleDelay,
			Stealth:     cfg.Browser.Stealth,
			UserAgent:   cfg.UserAgent,
			Logger:      logger,
		})
		rt.closer = br
		r = br
	}

	f := fetcher.NewFetcher(
		fetcher.WithTimeout(cfg.AssetTimeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithLogger(logger),
	)

	opts := []job.Option{
		job.WithLogger(logger),
		job.WithSummaries(cfg.Summaries),
	}
	if cfg.History {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		rt.DB = database
		opts = append(opts, job.WithRecorder(database))
	}

	rt.Orchestrator = job.NewOrchestrator(trees, r, f, opts...)
	return rt, nil
}

// Close releases the browser and the database.
func (rt *Runtime) Close() error {
	var firstErr error
	if rt.closer != nil {
		if err := rt.closer.Close(); err != nil {
			firstErr = err
		}
	}
	if rt.DB != nil {
		if err := rt.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
