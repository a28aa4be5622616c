// Package resolver finds same-origin asset references in rendered HTML,
// downloads them and points the references at the local copies.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/site-cloner/models"
	"github.com/dtnitsch/site-cloner/pkg/caching"
)

// AssetFetcher downloads one asset into destDir. ok is false when the asset
// was skipped.
type AssetFetcher interface {
	Fetch(ctx context.Context, rawURL, destDir string) (relPath string, ok bool)
}

// assetTag pairs an element with the attribute that carries its URL.
type assetTag struct {
	element string
	attr    string
}

// assetTags are visited in this order.
var assetTags = []assetTag{
	{"link", "href"},
	{"script", "src"},
	{"img", "src"},
	{"source", "src"},
}

// ignoredPrefixes mark references that are not network resources. Empty
// values are ignored as well.
var ignoredPrefixes = []string{"data:", "#", "javascript:"}

type Resolver struct {
	fetcher AssetFetcher
	cache   *caching.Cache
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache shares a job's asset cache with the resolver.
func WithCache(c *caching.Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func NewResolver(f AssetFetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: f,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve rewrites same-origin asset references in html to the paths
// returned by the fetcher. Cross-origin, non-network and skipped references
// keep their original value. The document is serialized once at the end.
func (r *Resolver) Resolve(ctx context.Context, html, pageURL, assetsDir string) (string, models.AssetStats, error) {
	var stats models.AssetStats

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", stats, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", stats, fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, tag := range assetTags {
		doc.Find(tag.element).Each(func(_ int, s *goquery.Selection) {
			value, exists := s.Attr(tag.attr)
			if !exists {
				return
			}
			stats.Candidates++

			if isIgnored(value) {
				stats.Ignored++
				return
			}

			ref, err := url.Parse(strings.TrimSpace(value))
			if err != nil {
				r.logger.Debug("Unparseable asset reference", "page", pageURL, "value", value, "error", err)
				stats.Skipped++
				return
			}
			assetURL := base.ResolveReference(ref)

			if assetURL.Host != base.Host {
				stats.CrossOrigin++
				return
			}

			rel, ok := r.fetch(ctx, assetURL.String(), assetsDir)
			if !ok {
				stats.Skipped++
				return
			}
			s.SetAttr(tag.attr, rel)
			stats.Rewritten++
		})
	}

	out, err := doc.Html()
	if err != nil {
		return "", stats, fmt.Errorf("failed to serialize HTML: %w", err)
	}
	return out, stats, nil
}

func (r *Resolver) fetch(ctx context.Context, assetURL, assetsDir string) (string, bool) {
	if rel, ok := r.cache.Get(assetURL); ok {
		return rel, true
	}
	rel, ok := r.fetcher.Fetch(ctx, assetURL, assetsDir)
	if ok {
		r.cache.Set(assetURL, rel)
	}
	return rel, ok
}

func isIgnored(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}
