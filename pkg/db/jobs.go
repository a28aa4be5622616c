package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/site-cloner/models"
)

// Job represents a clone job in the history
type Job struct {
	JobID             string
	CreatedAt         time.Time
	FinishedAt        *time.Time
	Status            string
	PageCount         int
	MaterializedCount int
	AssetsRewritten   int
	ArchiveName       string
	ArchiveBytes      int64
	ArchiveSHA256     string
	ErrorMessage      string
}

// JobPage represents one submitted page of a job
type JobPage struct {
	Position        int
	URL             string
	Title           string
	Filename        string
	Status          string
	AssetCandidates int
	AssetsRewritten int
	AssetsSkipped   int
	CrossOrigin     int
	SiteName        string
	Excerpt         string
	TextLength      int
	ErrorMessage    string
}

// InsertJob records a job as running.
func (db *DB) InsertJob(jobID string, pageCount int, createdAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO jobs (job_id, created_at, status, page_count)
		VALUES (?, ?, ?, ?)
	`, jobID, createdAt.UTC(), models.JobStatusRunning, pageCount)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// InsertJobPage records the outcome of one submitted page.
func (db *DB) InsertJobPage(jobID string, page models.PageResult) error {
	var siteName, excerpt string
	var textLength int
	if page.Summary != nil {
		siteName = page.Summary.SiteName
		excerpt = page.Summary.Excerpt
		textLength = page.Summary.TextLength
	}

	_, err := db.Exec(`
		INSERT INTO job_pages (
			job_id, position, url, title, filename, status,
			asset_candidates, assets_rewritten, assets_skipped, cross_origin,
			site_name, excerpt, text_length, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id, position) DO UPDATE SET
			filename = excluded.filename,
			status = excluded.status,
			asset_candidates = excluded.asset_candidates,
			assets_rewritten = excluded.assets_rewritten,
			assets_skipped = excluded.assets_skipped,
			cross_origin = excluded.cross_origin,
			site_name = excluded.site_name,
			excerpt = excluded.excerpt,
			text_length = excluded.text_length,
			error_message = excluded.error_message
	`, jobID, page.Position, page.URL, page.Title, nullString(page.Filename), page.Status,
		page.Assets.Candidates, page.Assets.Rewritten, page.Assets.Skipped, page.Assets.CrossOrigin,
		nullString(siteName), nullString(excerpt), textLength, nullString(page.Error))
	if err != nil {
		return fmt.Errorf("failed to insert job page: %w", err)
	}
	return nil
}

// FinishJob marks a job as succeeded with its archive details.
func (db *DB) FinishJob(jobID string, outcome models.JobOutcome) error {
	res, err := db.Exec(`
		UPDATE jobs SET
			status = ?, finished_at = ?, materialized_count = ?, assets_rewritten = ?,
			archive_name = ?, archive_bytes = ?, archive_sha256 = ?
		WHERE job_id = ?
	`, models.JobStatusSucceeded, time.Now().UTC(), outcome.Materialized, outcome.AssetsRewritten,
		outcome.ArchiveName, outcome.ArchiveBytes, outcome.ArchiveSHA256, jobID)
	if err != nil {
		return fmt.Errorf("failed to finish job: %w", err)
	}
	return expectOneRow(res, jobID)
}

// FailJob marks a job as failed.
func (db *DB) FailJob(jobID string, errMsg string) error {
	res, err := db.Exec(`
		UPDATE jobs SET status = ?, finished_at = ?, error_message = ?
		WHERE job_id = ?
	`, models.JobStatusFailed, time.Now().UTC(), errMsg, jobID)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return expectOneRow(res, jobID)
}

// ListJobs returns the most recent jobs, newest first.
func (db *DB) ListJobs(limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT job_id, created_at, finished_at, status, page_count, materialized_count,
		       assets_rewritten, COALESCE(archive_name, ''), archive_bytes,
		       COALESCE(archive_sha256, ''), COALESCE(error_message, '')
		FROM jobs
		ORDER BY created_at DESC, job_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// GetJob returns one job by ID.
func (db *DB) GetJob(jobID string) (*Job, error) {
	row := db.QueryRow(`
		SELECT job_id, created_at, finished_at, status, page_count, materialized_count,
		       assets_rewritten, COALESCE(archive_name, ''), archive_bytes,
		       COALESCE(archive_sha256, ''), COALESCE(error_message, '')
		FROM jobs WHERE job_id = ?
	`, jobID)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

// GetJobPages returns a job's pages in submission order.
func (db *DB) GetJobPages(jobID string) ([]JobPage, error) {
	rows, err := db.Query(`
		SELECT position, url, title, COALESCE(filename, ''), status,
		       asset_candidates, assets_rewritten, assets_skipped, cross_origin,
		       COALESCE(site_name, ''), COALESCE(excerpt, ''), text_length,
		       COALESCE(error_message, '')
		FROM job_pages WHERE job_id = ?
		ORDER BY position
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job pages: %w", err)
	}
	defer rows.Close()

	var pages []JobPage
	for rows.Next() {
		var p JobPage
		if err := rows.Scan(&p.Position, &p.URL, &p.Title, &p.Filename, &p.Status,
			&p.AssetCandidates, &p.AssetsRewritten, &p.AssetsSkipped, &p.CrossOrigin,
			&p.SiteName, &p.Excerpt, &p.TextLength, &p.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan job page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(s scanner) (*Job, error) {
	var j Job
	var finishedAt sql.NullTime
	err := s.Scan(&j.JobID, &j.CreatedAt, &finishedAt, &j.Status, &j.PageCount, &j.MaterializedCount,
		&j.AssetsRewritten, &j.ArchiveName, &j.ArchiveBytes, &j.ArchiveSHA256, &j.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		j.FinishedAt = &t
	}
	return &j, nil
}

func expectOneRow(res sql.Result, jobID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
