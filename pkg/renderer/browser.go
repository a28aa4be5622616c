package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const navigateTimeout = 30 * time.Second

// BrowserConfig configures BrowserRenderer.
type BrowserConfig struct {
	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty launches a local headless Chrome.
	RemoteURL string

	// SettleDelay is how long to wait after load for client-side rendering.
	SettleDelay time.Duration

	// Stealth applies go-rod/stealth evasions to every tab.
	Stealth bool

	UserAgent string
	Logger    *slog.Logger
}

// BrowserRenderer renders pages in headless Chrome. Chrome is started on
// the first Render; each render uses its own incognito context and tab, so
// renders share no cookies or storage.
type BrowserRenderer struct {
	cfg     BrowserConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

func NewBrowserRenderer(cfg BrowserConfig) *BrowserRenderer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &BrowserRenderer{cfg: cfg}
}

// Render navigates to pageURL, waits for load plus the settle delay and
// returns the final document HTML.
func (r *BrowserRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	log := r.cfg.Logger

	b, err := r.ensureBrowser()
	if err != nil {
		return "", err
	}

	incognito, err := b.Incognito()
	if err != nil {
		return "", fmt.Errorf("browser: incognito context: %w", err)
	}
	defer func() {
		if err := incognito.Close(); err != nil {
			log.Debug("browser: close incognito context", "error", err)
		}
	}()

	page, err := r.openPage(incognito)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = page.Close()
		log.Info("Browser session closed", "url", pageURL)
	}()

	log.Info("Browser session started", "url", pageURL)

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	if r.cfg.SettleDelay > 0 {
		log.Info("Waiting for dynamic content", "url", pageURL, "settle_delay", r.cfg.SettleDelay)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.cfg.SettleDelay):
		}
	}

	html, err := page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	log.Info("Retrieved rendered HTML", "url", pageURL, "size", len(html))
	return html, nil
}

// Close shuts Chrome down. Later renders fail.
func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return err
}

func (r *BrowserRenderer) openPage(b *rod.Browser) (*rod.Page, error) {
	var page *rod.Page
	var err error
	if r.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if r.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
			r.cfg.Logger.Warn("browser: set user agent failed", "error", err)
		}
	}
	return page, nil
}

func (r *BrowserRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("browser: renderer is closed")
	}
	if r.browser != nil {
		return r.browser, nil
	}

	log := r.cfg.Logger
	wsURL := r.cfg.RemoteURL
	if wsURL != "" {
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(true).
			NoSandbox(true).
			Set("disable-dev-shm-usage").
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		r.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if r.lnch != nil {
			r.lnch.Cleanup()
			r.lnch = nil
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	r.browser = b
	return b, nil
}
