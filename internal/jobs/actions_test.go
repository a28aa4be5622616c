package jobs

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/site-cloner/models"
	dbpkg "github.com/dtnitsch/site-cloner/pkg/db"
	"github.com/urfave/cli/v2"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	database, err := dbpkg.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer database.Close()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := database.InsertJob("job-old", 1, created); err != nil {
		t.Fatalf("InsertJob() failed: %v", err)
	}
	if err := database.FailJob("job-old", "failed to render https://nope.invalid/"); err != nil {
		t.Fatalf("FailJob() failed: %v", err)
	}

	if err := database.InsertJob("job-new", 2, created.Add(time.Hour)); err != nil {
		t.Fatalf("InsertJob() failed: %v", err)
	}
	page := models.PageResult{
		Position: 0,
		URL:      "https://example.com/",
		Title:    "Home",
		Filename: "home.html",
		Status:   models.PageStatusMaterialized,
		Assets:   models.AssetStats{Candidates: 3, Rewritten: 2, CrossOrigin: 1},
		Summary:  &models.PageSummary{Excerpt: "Welcome home"},
	}
	if err := database.InsertJobPage("job-new", page); err != nil {
		t.Fatalf("InsertJobPage() failed: %v", err)
	}
	if err := database.InsertJobPage("job-new", models.PageResult{Position: 1, URL: "https://example.com/x", Status: models.PageStatusSkipped}); err != nil {
		t.Fatalf("InsertJobPage() failed: %v", err)
	}
	if err := database.FinishJob("job-new", models.JobOutcome{Materialized: 1, AssetsRewritten: 2, ArchiveName: "example_com_clone.zip", ArchiveBytes: 512, ArchiveSHA256: "abc123"}); err != nil {
		t.Fatalf("FinishJob() failed: %v", err)
	}
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	dbFlag := &cli.StringFlag{Name: "db"}
	a := &cli.App{
		Name:   "site-cloner",
		Writer: &out,
		Commands: []*cli.Command{
			{Name: "jobs", Flags: []cli.Flag{dbFlag, &cli.IntFlag{Name: "limit", Value: 20}}, Action: JobsAction},
			{Name: "job", Flags: []cli.Flag{dbFlag, &cli.StringFlag{Name: "format", Value: "table"}}, Action: JobAction},
		},
	}
	err := a.Run(append([]string{"site-cloner"}, args...))
	return out.String(), err
}

func TestJobsAction(t *testing.T) {
	path := seedDB(t)

	out, err := runApp(t, "jobs", "--db", path)
	if err != nil {
		t.Fatalf("jobs failed: %v", err)
	}
	newIdx := strings.Index(out, "job-new")
	oldIdx := strings.Index(out, "job-old")
	if newIdx < 0 || oldIdx < 0 || newIdx > oldIdx {
		t.Errorf("jobs not listed newest first:\n%s", out)
	}
	if !strings.Contains(out, "Total: 2 jobs") {
		t.Errorf("missing total line:\n%s", out)
	}

	out, err = runApp(t, "jobs", "--db", path, "--limit", "1")
	if err != nil {
		t.Fatalf("jobs --limit failed: %v", err)
	}
	if strings.Contains(out, "job-old") {
		t.Errorf("limit not applied:\n%s", out)
	}
}

func TestJobAction_LatestByDefault(t *testing.T) {
	path := seedDB(t)

	out, err := runApp(t, "job", "--db", path)
	if err != nil {
		t.Fatalf("job failed: %v", err)
	}
	for _, want := range []string{"Job job-new", "example_com_clone.zip", "[materialized] https://example.com/", "[skipped] https://example.com/x", "Welcome home"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJobAction_FailedJobYAML(t *testing.T) {
	path := seedDB(t)

	out, err := runApp(t, "job", "--db", path, "--format", "yaml", "job-old")
	if err != nil {
		t.Fatalf("job failed: %v", err)
	}
	if !strings.Contains(out, "status: failed") || !strings.Contains(out, "error: failed to render https://nope.invalid/") {
		t.Errorf("unexpected yaml:\n%s", out)
	}
}

func TestJobAction_Unknown(t *testing.T) {
	path := seedDB(t)

	if _, err := runApp(t, "job", "--db", path, "missing"); err == nil {
		t.Error("job with unknown id succeeded")
	}
}

func TestJobAction_EmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	if _, err := runApp(t, "job", "--db", path); err == nil || !strings.Contains(err.Error(), "no jobs found") {
		t.Errorf("job on empty history error = %v", err)
	}
}
