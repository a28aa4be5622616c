package clone

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/site-cloner/internal/app"
	"github.com/urfave/cli/v2"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><head><title>Home</title><link rel="stylesheet" href="/site.css"></head><body><img src="/logo.png"><a href="#top">top</a></body></html>`)
	})
	mux.HandleFunc("/site.css", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "body{color:red}")
	})
	mux.HandleFunc("/logo.png", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "PNG")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCloneAction(t *testing.T) {
	site := newSite(t)
	dir := t.TempDir()

	pagesFile := filepath.Join(dir, "pages.yaml")
	doc := fmt.Sprintf("pages:\n  - url: %q\n    title: Home Page\n  - url: %q\n", site.URL+"/", site.URL+"/untitled")
	if err := os.WriteFile(pagesFile, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	workDir := filepath.Join(dir, "work")
	out := filepath.Join(dir, "out", "site.zip")

	var stdout bytes.Buffer
	a := &cli.App{
		Name:   "site-cloner",
		Writer: &stdout,
		Commands: []*cli.Command{{
			Name:   "clone",
			Flags:  append(Flags(), app.RuntimeFlags()...),
			Action: CloneAction,
		}},
	}
	err := a.Run([]string{"site-cloner", "clone",
		"--pages", pagesFile,
		"--out", out,
		"--renderer", "http",
		"--work-dir", workDir,
		"--no-history",
		"--quiet",
	})
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	defer zr.Close()

	var names []string
	var page string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "home_page.html" {
			rc, _ := f.Open()
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(rc)
			rc.Close()
			page = buf.String()
		}
	}
	if len(names) != 3 {
		t.Errorf("archive entries = %v, want page plus two assets", names)
	}
	if !strings.Contains(page, `href="assets/`) || !strings.Contains(page, `src="assets/`) {
		t.Errorf("references not rewritten: %s", page)
	}
	if !strings.Contains(page, `href="#top"`) {
		t.Errorf("fragment link changed: %s", page)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("work dir missing: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("work dir not cleaned: %d entries", len(entries))
	}
	if !strings.Contains(stdout.String(), out) {
		t.Errorf("stdout = %q, want archive path", stdout.String())
	}
}
