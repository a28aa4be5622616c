package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Jobs table: one row per clone job
CREATE TABLE IF NOT EXISTS jobs (
    job_id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    status TEXT NOT NULL,             -- running, succeeded, failed
    page_count INTEGER NOT NULL DEFAULT 0,
    materialized_count INTEGER NOT NULL DEFAULT 0,
    assets_rewritten INTEGER NOT NULL DEFAULT 0,
    archive_name TEXT,
    archive_bytes INTEGER NOT NULL DEFAULT 0,
    archive_sha256 TEXT,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

-- Job pages: every submitted page, including skipped and failed ones
CREATE TABLE IF NOT EXISTS job_pages (
    job_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    filename TEXT,
    status TEXT NOT NULL,             -- materialized, skipped, failed
    asset_candidates INTEGER NOT NULL DEFAULT 0,
    assets_rewritten INTEGER NOT NULL DEFAULT 0,
    assets_skipped INTEGER NOT NULL DEFAULT 0,
    cross_origin INTEGER NOT NULL DEFAULT 0,
    site_name TEXT,
    excerpt TEXT,
    text_length INTEGER NOT NULL DEFAULT 0,
    error_message TEXT,
    PRIMARY KEY (job_id, position),
    FOREIGN KEY (job_id) REFERENCES jobs(job_id) ON DELETE CASCADE
);
`
