// Package materializer renders one page, localizes its assets and writes the
// result into the job's working tree.
package materializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/site-cloner/models"
	"github.com/dtnitsch/site-cloner/pkg/artifact_manager"
	"github.com/dtnitsch/site-cloner/pkg/parser"
	"github.com/dtnitsch/site-cloner/pkg/renderer"
)

// fallbackFilename is used when a title has no usable characters.
const fallbackFilename = "index"

// AssetResolver rewrites asset references in rendered HTML.
type AssetResolver interface {
	Resolve(ctx context.Context, html, pageURL, assetsDir string) (string, models.AssetStats, error)
}

type Materializer struct {
	renderer  renderer.Renderer
	resolver  AssetResolver
	summarize bool
	logger    *slog.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithSummary enables readability summaries on page results.
func WithSummary(enabled bool) Option {
	return func(m *Materializer) { m.summarize = enabled }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Materializer) { m.logger = l }
}

func NewMaterializer(r renderer.Renderer, res AssetResolver, opts ...Option) *Materializer {
	m := &Materializer{
		renderer: r,
		resolver: res,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Materialize renders pageURL, localizes its same-origin assets into the
// tree's assets directory and writes <SafeFilename(title)>.html at the tree
// root. Render and parse failures are returned; asset failures are not.
func (m *Materializer) Materialize(ctx context.Context, pageURL, title string, tree *artifact_manager.JobTree) (*models.PageResult, error) {
	m.logger.Info("Scraping page", "title", title, "url", pageURL)

	html, err := m.renderer.Render(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	rewritten, stats, err := m.resolver.Resolve(ctx, html, pageURL, tree.AssetsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets for %s: %w", pageURL, err)
	}

	result := &models.PageResult{
		URL:      pageURL,
		Title:    title,
		Filename: SafeFilename(title) + ".html",
		Status:   models.PageStatusMaterialized,
		Assets:   stats,
	}

	if m.summarize {
		summary, err := parser.Summarize(pageURL, html)
		if err != nil {
			m.logger.Debug("Page summary unavailable", "url", pageURL, "error", err)
		} else {
			result.Summary = summary
		}
	}

	out, err := tree.WritePage(SafeFilename(title), []byte(rewritten))
	if err != nil {
		return nil, err
	}

	m.logger.Info("Saved final rendered page", "path", out,
		"assets_rewritten", stats.Rewritten, "assets_skipped", stats.Skipped, "cross_origin", stats.CrossOrigin)
	return result, nil
}

// SafeFilename derives a file name from an untrusted page title: ASCII
// letters, digits, spaces and underscores are kept, trailing whitespace is
// trimmed, spaces become underscores and the result is lowercased. The
// result always matches ^[a-z0-9_]+$; empty titles map to "index".
func SafeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, c := range title {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == ' ', c == '_':
			b.WriteRune(c)
		}
	}

	name := strings.TrimRight(b.String(), " ")
	name = strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	if name == "" {
		return fallbackFilename
	}
	return name
}
