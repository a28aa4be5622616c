package models

import "time"

// Job status values stored in the job history.
const (
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"

	PageStatusMaterialized = "materialized"
	PageStatusSkipped      = "skipped"
	PageStatusFailed       = "failed"
)

// AssetStats counts what the resolver did with a page's asset references.
type AssetStats struct {
	Candidates  int `json:"candidates" yaml:"candidates"`
	Rewritten   int `json:"rewritten" yaml:"rewritten"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	CrossOrigin int `json:"cross_origin" yaml:"cross_origin"`
	Ignored     int `json:"ignored" yaml:"ignored"` // data:, #, javascript:
}

// Add accumulates other into s.
func (s *AssetStats) Add(other AssetStats) {
	s.Candidates += other.Candidates
	s.Rewritten += other.Rewritten
	s.Skipped += other.Skipped
	s.CrossOrigin += other.CrossOrigin
	s.Ignored += other.Ignored
}

// PageSummary is readability metadata captured for the job history.
type PageSummary struct {
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Excerpt    string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	SiteName   string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
	TextLength int    `json:"text_length,omitempty" yaml:"text_length,omitempty"`
}

// PageResult is the outcome of materializing one page.
type PageResult struct {
	Position int          `json:"position" yaml:"position"`
	URL      string       `json:"url" yaml:"url"`
	Title    string       `json:"title" yaml:"title"`
	Filename string       `json:"filename,omitempty" yaml:"filename,omitempty"`
	Status   string       `json:"status" yaml:"status"`
	Assets   AssetStats   `json:"assets" yaml:"assets"`
	Summary  *PageSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error    string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// JobResult describes a populated working tree ready for packaging.
type JobResult struct {
	JobID     string       `json:"job_id" yaml:"job_id"`
	Dir       string       `json:"dir" yaml:"dir"`
	Pages     []PageResult `json:"pages" yaml:"pages"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
}

// Materialized counts pages written to the tree.
func (r *JobResult) Materialized() int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == PageStatusMaterialized {
			n++
		}
	}
	return n
}

// JobOutcome is recorded when a job's archive has been produced.
type JobOutcome struct {
	Materialized    int
	AssetsRewritten int
	ArchiveName     string
	ArchiveBytes    int64
	ArchiveSHA256   string
}
