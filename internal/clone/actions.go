package clone

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dtnitsch/site-cloner/internal/app"
	"github.com/dtnitsch/site-cloner/internal/common"
	"github.com/dtnitsch/site-cloner/pkg/job"
	"github.com/urfave/cli/v2"
)

// Flags are the clone-only flags; app.RuntimeFlags are added by main.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "pages", Aliases: []string{"p"}, Required: true, Usage: "YAML or JSON page list"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "archive path (default: <host>_clone.zip in the current directory)"},
	}
}

func CloneAction(c *cli.Context) error {
	logger := app.NewLogger(c)

	cfg, err := app.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pages, err := common.LoadPageList(c.String("pages"))
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return cli.Exit("No pages provided for scraping.", 2)
	}
	for _, u := range common.SanitizePages(pages) {
		logger.Warn("Page url looks invalid", "url", u)
	}

	rt, err := app.NewRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Failed to close runtime", "error", err)
		}
	}()

	arc, err := rt.Orchestrator.Clone(c.Context, pages)
	if err != nil {
		if errors.Is(err, job.ErrNoPages) {
			return cli.Exit("No pages provided for scraping.", 2)
		}
		logger.Error("Clone failed", "error", err)
		return cli.Exit(job.UserMessage(err), 1)
	}

	out := c.String("out")
	if out == "" {
		out = arc.Name
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, arc.Data, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "%s (%d bytes, job %s)\n", out, len(arc.Data), arc.JobID)
	return nil
}
