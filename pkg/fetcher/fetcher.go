// Package fetcher downloads single same-origin assets into a job's assets
// directory under names derived from the asset URL.
package fetcher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	// AssetsDirName is the directory, relative to the job root, holding assets.
	AssetsDirName = "assets"

	hashLength       = 10
	defaultExtension = ".bin"
	defaultTimeout   = 20 * time.Second
)

type Fetcher struct {
	client *http.Client
	ua     string
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client. Its Timeout bounds every asset download.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout replaces the client timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		c := *f.client
		c.Timeout = d
		f.client = &c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.ua = ua }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// AssetName returns the stored filename for an asset URL: the first 10 hex
// characters of its SHA-1 followed by the extension of the URL path.
func AssetName(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	name := hex.EncodeToString(sum[:])[:hashLength]

	ext := defaultExtension
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		// dotfiles such as ".htaccess" have no extension
		if e := path.Ext(base); e != "" && e != "." && e != base {
			ext = e
		}
	}
	return name + ext
}

// Fetch downloads rawURL into destDir and returns the asset path relative to
// the job root ("assets/<name>"). ok is false when the asset was skipped:
// disallowed scheme, transport failure, timeout or a non-2xx status. Skips
// are logged and never returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		f.logger.Warn("Skipping asset from disallowed scheme", "asset", rawURL)
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Warn("Asset download failed", "asset", rawURL, "error", err)
		return "", false
	}
	if f.ua != "" {
		req.Header.Set("User-Agent", f.ua)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("Asset download failed", "asset", rawURL, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("Asset download failed", "asset", rawURL, "status_code", resp.StatusCode)
		return "", false
	}

	name := AssetName(rawURL)
	destPath := filepath.Join(destDir, name)
	if err := writeFile(destPath, resp.Body); err != nil {
		f.logger.Warn("Asset download failed", "asset", rawURL, "error", err)
		return "", false
	}

	f.logger.Info("Downloaded asset", "asset", rawURL, "file", name)
	return path.Join(AssetsDirName, name), true
}

// writeFile streams body to destPath, removing the partial file on failure.
func writeFile(destPath string, body io.Reader) error {
	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create asset file: %w", err)
	}

	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("failed to write asset file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("failed to close asset file: %w", err)
	}
	return nil
}
