package jobs

import (
	"fmt"
	"io"
	"strings"
	"time"

	dbpkg "github.com/dtnitsch/site-cloner/pkg/db"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const timeLayout = "2006-01-02 15:04:05"

func JobsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	jobs, err := database.ListJobs(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	printJobs(c.App.Writer, jobs)
	return nil
}

// JobAction shows details for one job, or the latest when no id is given.
func JobAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	jobID, err := GetJobIDOrLatest(c, database)
	if err != nil {
		return err
	}

	job, err := database.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	pages, err := database.GetJobPages(jobID)
	if err != nil {
		return fmt.Errorf("failed to get job pages: %w", err)
	}

	if strings.ToLower(c.String("format")) == "yaml" {
		return writeYAML(c.App.Writer, job, pages)
	}
	printJob(c.App.Writer, job, pages)
	return nil
}

// GetJobIDOrLatest returns the job ID from args, or the latest job if not provided
func GetJobIDOrLatest(c *cli.Context, database *dbpkg.DB) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}
	jobs, err := database.ListJobs(1)
	if err != nil {
		return "", fmt.Errorf("failed to get latest job: %w", err)
	}
	if len(jobs) == 0 {
		return "", fmt.Errorf("no jobs found. Run 'site-cloner clone --pages <file>' first")
	}
	return jobs[0].JobID, nil
}

func printJobs(w io.Writer, jobs []dbpkg.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found")
		return
	}

	fmt.Fprintf(w, "%-36s %-20s %-10s %-6s %-6s %-7s %-30s\n",
		"Job ID", "Created", "Status", "Pages", "Saved", "Assets", "Archive")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, j := range jobs {
		fmt.Fprintf(w, "%-36s %-20s %-10s %-6d %-6d %-7d %-30s\n",
			j.JobID,
			j.CreatedAt.Format(timeLayout),
			j.Status,
			j.PageCount,
			j.MaterializedCount,
			j.AssetsRewritten,
			j.ArchiveName,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d jobs\n", len(jobs))
	fmt.Fprintf(w, "\nTip: Use 'site-cloner job <id>' to see details\n")
}

func printJob(w io.Writer, job *dbpkg.Job, pages []dbpkg.JobPage) {
	fmt.Fprintf(w, "Job %s\n", job.JobID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Created:     %s\n", job.CreatedAt.Format(timeLayout))
	if job.FinishedAt != nil {
		fmt.Fprintf(w, "Finished:    %s (%s)\n", job.FinishedAt.Format(timeLayout), job.FinishedAt.Sub(job.CreatedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Status:      %s\n", job.Status)
	fmt.Fprintf(w, "Pages:       %d submitted, %d saved\n", job.PageCount, job.MaterializedCount)
	if job.ArchiveName != "" {
		fmt.Fprintf(w, "Archive:     %s (%d bytes)\n", job.ArchiveName, job.ArchiveBytes)
		fmt.Fprintf(w, "SHA-256:     %s\n", job.ArchiveSHA256)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:       %s\n", job.ErrorMessage)
	}

	if len(pages) == 0 {
		return
	}
	fmt.Fprintf(w, "\nPages (%d):\n", len(pages))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, p := range pages {
		fmt.Fprintf(w, "%2d. [%s] %s\n", p.Position+1, p.Status, p.URL)
		switch {
		case p.ErrorMessage != "":
			fmt.Fprintf(w, "    Error: %s\n", p.ErrorMessage)
		case p.Filename != "":
			fmt.Fprintf(w, "    File: %s | Assets: %d rewritten, %d skipped, %d cross-origin\n",
				p.Filename, p.AssetsRewritten, p.AssetsSkipped, p.CrossOrigin)
		}
		if p.Excerpt != "" {
			fmt.Fprintf(w, "    %s\n", p.Excerpt)
		}
	}
}

type jobDoc struct {
	JobID       string    `yaml:"job_id"`
	Status      string    `yaml:"status"`
	CreatedAt   string    `yaml:"created_at"`
	FinishedAt  string    `yaml:"finished_at,omitempty"`
	Archive     string    `yaml:"archive,omitempty"`
	ArchiveSize int64     `yaml:"archive_bytes,omitempty"`
	SHA256      string    `yaml:"archive_sha256,omitempty"`
	Error       string    `yaml:"error,omitempty"`
	Pages       []pageDoc `yaml:"pages"`
}

type pageDoc struct {
	URL       string `yaml:"url"`
	Title     string `yaml:"title"`
	Status    string `yaml:"status"`
	File      string `yaml:"file,omitempty"`
	Rewritten int    `yaml:"assets_rewritten"`
	Skipped   int    `yaml:"assets_skipped"`
	Cross     int    `yaml:"cross_origin"`
	SiteName  string `yaml:"site_name,omitempty"`
	Excerpt   string `yaml:"excerpt,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

func writeYAML(w io.Writer, job *dbpkg.Job, pages []dbpkg.JobPage) error {
	doc := jobDoc{
		JobID:       job.JobID,
		Status:      job.Status,
		CreatedAt:   job.CreatedAt.Format(timeLayout),
		Archive:     job.ArchiveName,
		ArchiveSize: job.ArchiveBytes,
		SHA256:      job.ArchiveSHA256,
		Error:       job.ErrorMessage,
		Pages:       make([]pageDoc, 0, len(pages)),
	}
	if job.FinishedAt != nil {
		doc.FinishedAt = job.FinishedAt.Format(timeLayout)
	}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, pageDoc{
			URL:       p.URL,
			Title:     p.Title,
			Status:    p.Status,
			File:      p.Filename,
			Rewritten: p.AssetsRewritten,
			Skipped:   p.AssetsSkipped,
			Cross:     p.CrossOrigin,
			SiteName:  p.SiteName,
			Excerpt:   p.Excerpt,
			Error:     p.ErrorMessage,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	return enc.Close()
}
