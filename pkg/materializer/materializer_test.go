package materializer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/dtnitsch/site-cloner/models"
	"github.com/dtnitsch/site-cloner/pkg/artifact_manager"
	"github.com/dtnitsch/site-cloner/pkg/renderer"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Home Page", "home_page"},
		{"About Us!", "about_us"},
		{"  Leading spaces", "__leading_spaces"},
		{"Trailing   ", "trailing"},
		{"snake_case_Title", "snake_case_title"},
		{"", "index"},
		{"!!!", "index"},
		{"   ", "index"},
		{"Café Menu", "caf_menu"},
		{"a é", "a"},
		{"日本語", "index"},
		{"../../etc/passwd", "etcpasswd"},
		{"Version 2.0", "version_20"},
	}

	valid := regexp.MustCompile(`^[a-z0-9_]+$`)
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := SafeFilename(tt.title)
			if got != tt.want {
				t.Errorf("SafeFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
			if !valid.MatchString(got) {
				t.Errorf("SafeFilename(%q) = %q contains characters outside [a-z0-9_]", tt.title, got)
			}
		})
	}
}

type stubResolver struct {
	gotAssetsDir string
	err          error
}

func (s *stubResolver) Resolve(_ context.Context, html, _, assetsDir string) (string, models.AssetStats, error) {
	s.gotAssetsDir = assetsDir
	if s.err != nil {
		return "", models.AssetStats{}, s.err
	}
	return strings.ReplaceAll(html, "/logo.png", "assets/abc.png"), models.AssetStats{Candidates: 1, Rewritten: 1}, nil
}

func newTree(t *testing.T) *artifact_manager.JobTree {
	t.Helper()
	m, err := artifact_manager.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	tree, err := m.CreateJobTree("job")
	if err != nil {
		t.Fatalf("CreateJobTree() error = %v", err)
	}
	return tree
}

func TestMaterialize_WritesRewrittenPage(t *testing.T) {
	tree := newTree(t)
	render := renderer.Func(func(_ context.Context, pageURL string) (string, error) {
		return `<html><body><img src="/logo.png"></body></html>`, nil
	})
	res := &stubResolver{}
	m := NewMaterializer(render, res, WithLogger(quietLogger()))

	result, err := m.Materialize(context.Background(), "https://example.com/", "Home Page", tree)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	if res.gotAssetsDir != tree.AssetsDir() {
		t.Errorf("resolver assetsDir = %q, want %q", res.gotAssetsDir, tree.AssetsDir())
	}
	if result.Filename != "home_page.html" {
		t.Errorf("Filename = %q, want %q", result.Filename, "home_page.html")
	}
	if result.Assets.Rewritten != 1 {
		t.Errorf("Assets.Rewritten = %d, want 1", result.Assets.Rewritten)
	}

	data, err := os.ReadFile(tree.PagePath("home_page"))
	if err != nil {
		t.Fatalf("page not written: %v", err)
	}
	if !strings.Contains(string(data), `src="assets/abc.png"`) {
		t.Errorf("written page = %s, want rewritten reference", data)
	}
}

func TestMaterialize_RenderFailure(t *testing.T) {
	tree := newTree(t)
	renderErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	render := renderer.Func(func(context.Context, string) (string, error) {
		return "", renderErr
	})
	m := NewMaterializer(render, &stubResolver{}, WithLogger(quietLogger()))

	_, err := m.Materialize(context.Background(), "https://nope.invalid/", "x", tree)
	if !errors.Is(err, renderErr) {
		t.Fatalf("Materialize() error = %v, want wrapped render error", err)
	}

	files, _ := tree.Files()
	if len(files) != 0 {
		t.Errorf("failed render wrote files: %v", files)
	}
}

func TestMaterialize_ResolveFailure(t *testing.T) {
	tree := newTree(t)
	render := renderer.Func(func(context.Context, string) (string, error) {
		return "<html></html>", nil
	})
	m := NewMaterializer(render, &stubResolver{err: errors.New("parse")}, WithLogger(quietLogger()))

	if _, err := m.Materialize(context.Background(), "https://example.com/", "x", tree); err == nil {
		t.Fatal("Materialize() error = nil, want resolve error")
	}
}

func TestMaterialize_TitleCollisionOverwrites(t *testing.T) {
	tree := newTree(t)
	render := renderer.Func(func(_ context.Context, pageURL string) (string, error) {
		return "<html><body>" + pageURL + "</body></html>", nil
	})
	m := NewMaterializer(render, &stubResolver{}, WithLogger(quietLogger()))

	for _, u := range []string{"https://example.com/a", "https://example.com/b"} {
		if _, err := m.Materialize(context.Background(), u, "Same Title", tree); err != nil {
			t.Fatalf("Materialize(%s) error = %v", u, err)
		}
	}

	data, _ := os.ReadFile(tree.PagePath("same_title"))
	if !strings.Contains(string(data), "https://example.com/b") {
		t.Errorf("second page did not overwrite first: %s", data)
	}
}

func TestMaterialize_Summary(t *testing.T) {
	tree := newTree(t)
	body := strings.Repeat("<p>A long paragraph about cloning sites for offline reading and review. </p>", 20)
	render := renderer.Func(func(context.Context, string) (string, error) {
		return "<html><head><title>Guide</title></head><body><article>" + body + "</article></body></html>", nil
	})
	m := NewMaterializer(render, &stubResolver{}, WithSummary(true), WithLogger(quietLogger()))

	result, err := m.Materialize(context.Background(), "https://example.com/guide", "Guide", tree)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if result.Summary == nil || result.Summary.TextLength == 0 {
		t.Errorf("Summary = %+v, want populated summary", result.Summary)
	}
}
