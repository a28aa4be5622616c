// Package renderer turns a page URL into the HTML that should be cloned.
// BrowserRenderer runs headless Chrome so client-side content is included;
// HTTPRenderer returns the server response as-is.
package renderer

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/go-rod/rod"
)

// Renderer produces complete HTML for a page or fails explicitly.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// Func adapts a plain function to the Renderer interface.
type Func func(ctx context.Context, pageURL string) (string, error)

func (f Func) Render(ctx context.Context, pageURL string) (string, error) {
	return f(ctx, pageURL)
}

const nameNotResolved = "net::ERR_NAME_NOT_RESOLVED"

// IsNameNotResolved reports whether err means the page host does not exist.
func IsNameNotResolved(err error) bool {
	if err == nil {
		return false
	}

	var navErr *rod.NavigationError
	if errors.As(err, &navErr) && navErr.Reason == nameNotResolved {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return true
	}

	return strings.Contains(err.Error(), nameNotResolved)
}
