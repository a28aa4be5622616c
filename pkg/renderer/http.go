package renderer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxPageBytes caps a page body read by HTTPRenderer.
const maxPageBytes = 10 << 20

// HTTPRenderer fetches the page without executing scripts.
type HTTPRenderer struct {
	client *http.Client
	ua     string
	logger *slog.Logger
}

func NewHTTPRenderer(timeout time.Duration, userAgent string, logger *slog.Logger) *HTTPRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPRenderer{
		client: &http.Client{Timeout: timeout},
		ua:     userAgent,
		logger: logger,
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if r.ua != "" {
		req.Header.Set("User-Agent", r.ua)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	r.logger.Debug("Fetched page", "url", pageURL, "size", len(body))
	return string(body), nil
}
