package renderer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod"
)

func TestIsNameNotResolved(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rod navigation error", fmt.Errorf("browser: navigate: %w", &rod.NavigationError{Reason: "net::ERR_NAME_NOT_RESOLVED"}), true},
		{"other navigation error", &rod.NavigationError{Reason: "net::ERR_CONNECTION_REFUSED"}, false},
		{"dns not found", fmt.Errorf("failed: %w", &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}), true},
		{"message only", errors.New("unknown error: net::ERR_NAME_NOT_RESOLVED"), true},
		{"unrelated", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNameNotResolved(tt.err); got != tt.want {
				t.Errorf("IsNameNotResolved(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestHTTPRenderer_Render(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	r := NewHTTPRenderer(5*time.Second, "test-agent", slog.New(slog.NewTextHandler(io.Discard, nil)))

	html, err := r.Render(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if html != "<html><body>hello</body></html>" {
		t.Errorf("Render() = %q", html)
	}

	if _, err := r.Render(context.Background(), server.URL+"/missing"); err == nil {
		t.Error("Render() error = nil for 404")
	}
}

func TestFunc(t *testing.T) {
	var r Renderer = Func(func(_ context.Context, pageURL string) (string, error) {
		return "<p>" + pageURL + "</p>", nil
	})
	got, err := r.Render(context.Background(), "x")
	if err != nil || got != "<p>x</p>" {
		t.Errorf("Func.Render() = (%q, %v)", got, err)
	}
}
