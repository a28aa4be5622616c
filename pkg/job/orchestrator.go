// Package job runs clone jobs: one isolated working tree per job, pages
// materialized in submission order, the tree packed into a zip archive and
// removed afterwards.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/site-cloner/internal/common"
	"github.com/dtnitsch/site-cloner/models"
	"github.com/dtnitsch/site-cloner/pkg/archive"
	"github.com/dtnitsch/site-cloner/pkg/artifact_manager"
	"github.com/dtnitsch/site-cloner/pkg/caching"
	"github.com/dtnitsch/site-cloner/pkg/materializer"
	"github.com/dtnitsch/site-cloner/pkg/renderer"
	"github.com/dtnitsch/site-cloner/pkg/resolver"
)

// ErrNoPages is returned before any work starts when the page list is empty.
var ErrNoPages = errors.New("no pages provided for scraping")

// Recorder stores job history. All methods are best-effort: failures are
// logged and never fail the job.
type Recorder interface {
	InsertJob(jobID string, pageCount int, createdAt time.Time) error
	InsertJobPage(jobID string, page models.PageResult) error
	FinishJob(jobID string, outcome models.JobOutcome) error
	FailJob(jobID string, errMsg string) error
}

// Archive is the only artifact that outlives a job.
type Archive struct {
	JobID string
	Name  string
	Data  []byte
}

type Orchestrator struct {
	trees     *artifact_manager.Manager
	renderer  renderer.Renderer
	fetcher   resolver.AssetFetcher
	recorder  Recorder
	summarize bool
	newID     func() string
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder stores job history in r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithSummaries extracts readability summaries for the job history.
func WithSummaries(enabled bool) Option {
	return func(o *Orchestrator) { o.summarize = enabled }
}

// WithIDGenerator replaces UUIDv7 job IDs.
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) { o.newID = gen }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an Orchestrator. trees decides where working
// directories live; r renders pages and f downloads assets. r and f are
// shared by concurrent jobs.
func NewOrchestrator(trees *artifact_manager.Manager, r renderer.Renderer, f resolver.AssetFetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		trees:    trees,
		renderer: r,
		fetcher:  f,
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Clone runs a full job and returns the archive. The working tree is removed
// whether the job succeeds or fails.
func (o *Orchestrator) Clone(ctx context.Context, pages []models.PageRequest) (*Archive, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	result, err := o.RunJob(ctx, pages)
	if err != nil {
		return nil, err
	}
	log := o.logger.With("job_id", result.JobID)

	data, err := archive.PackAndRemove(result.Dir, log)
	if err != nil {
		log.Error("Packaging failed", "error", err)
		o.recordFailure(result.JobID, err)
		return nil, fmt.Errorf("failed to package job %s: %w", result.JobID, err)
	}

	name := archive.ArchiveName(firstURL(pages))
	if o.recorder != nil {
		var totals models.AssetStats
		for _, p := range result.Pages {
			totals.Add(p.Assets)
		}
		outcome := models.JobOutcome{
			Materialized:    result.Materialized(),
			AssetsRewritten: totals.Rewritten,
			ArchiveName:     name,
			ArchiveBytes:    int64(len(data)),
			ArchiveSHA256:   common.ContentHash(data),
		}
		if err := o.recorder.FinishJob(result.JobID, outcome); err != nil {
			log.Warn("Failed to record job outcome", "error", err)
		}
	}

	log.Info("Job completed", "archive", name, "bytes", len(data), "pages", result.Materialized())
	return &Archive{JobID: result.JobID, Name: name, Data: data}, nil
}

// RunJob creates a fresh working tree and materializes every valid page in
// order. Entries without url or title are skipped. The first page failure
// aborts the job and removes the tree before the error is returned; on
// success the caller owns the tree at result.Dir.
func (o *Orchestrator) RunJob(ctx context.Context, pages []models.PageRequest) (*models.JobResult, error) {
	jobID := o.newID()
	log := o.logger.With("job_id", jobID)

	tree, err := o.trees.CreateJobTree(jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to init job: %w", err)
	}

	result := &models.JobResult{
		JobID:     jobID,
		Dir:       tree.Root(),
		CreatedAt: time.Now().UTC(),
	}
	log.Info("Starting job", "pages", len(pages), "dir", tree.Root())
	if o.recorder != nil {
		if err := o.recorder.InsertJob(jobID, len(pages), result.CreatedAt); err != nil {
			log.Warn("Failed to record job", "error", err)
		}
	}

	cache := caching.NewCache()
	mat := materializer.NewMaterializer(
		o.renderer,
		resolver.NewResolver(o.fetcher, resolver.WithCache(cache), resolver.WithLogger(log)),
		materializer.WithSummary(o.summarize),
		materializer.WithLogger(log),
	)

	for i, page := range pages {
		if !page.Valid() {
			log.Info("Skipping page without url or title", "position", i)
			o.recordPage(log, jobID, skippedPage(i, page))
			continue
		}

		pr, err := mat.Materialize(ctx, *page.URL, *page.Title, tree)
		if err != nil {
			log.Error("Page failed, aborting job", "position", i, "url", *page.URL, "error", err)
			o.recordPage(log, jobID, models.PageResult{
				Position: i,
				URL:      *page.URL,
				Title:    *page.Title,
				Status:   models.PageStatusFailed,
				Error:    err.Error(),
			})
			o.recordFailure(jobID, err)
			if rmErr := tree.Remove(); rmErr != nil {
				log.Error("Error during cleanup", "dir", tree.Root(), "error", rmErr)
			}
			return nil, err
		}

		pr.Position = i
		result.Pages = append(result.Pages, *pr)
		o.recordPage(log, jobID, *pr)
	}

	log.Info("Materialized pages", "materialized", result.Materialized(), "distinct_assets", cache.Len(), "asset_cache_hits", cache.Hits())
	return result, nil
}

func (o *Orchestrator) recordPage(log *slog.Logger, jobID string, pr models.PageResult) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.InsertJobPage(jobID, pr); err != nil {
		log.Warn("Failed to record page", "position", pr.Position, "error", err)
	}
}

func (o *Orchestrator) recordFailure(jobID string, cause error) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.FailJob(jobID, cause.Error()); err != nil {
		o.logger.Warn("Failed to record job failure", "job_id", jobID, "error", err)
	}
}

func skippedPage(position int, page models.PageRequest) models.PageResult {
	pr := models.PageResult{Position: position, Status: models.PageStatusSkipped}
	if page.URL != nil {
		pr.URL = *page.URL
	}
	if page.Title != nil {
		pr.Title = *page.Title
	}
	return pr
}

// firstURL returns the url of the first submitted entry, valid or not,
// because the archive is named after it. Only a missing url falls back to
// archive.DefaultPageURL; an explicit empty one is passed through.
func firstURL(pages []models.PageRequest) string {
	if len(pages) == 0 || pages[0].URL == nil {
		return archive.DefaultPageURL
	}
	return *pages[0].URL
}
