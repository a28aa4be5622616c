package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/site-cloner/internal/app"
	"github.com/dtnitsch/site-cloner/internal/clone"
	"github.com/dtnitsch/site-cloner/internal/jobs"
	"github.com/dtnitsch/site-cloner/internal/serve"
	"github.com/dtnitsch/site-cloner/pkg/help"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	dbFlag := &cli.StringFlag{Name: "db", Usage: "job history database path", EnvVars: []string{"SITE_CLONER_DB"}}

	a := &cli.App{
		Name:  "site-cloner",
		Usage: "render web pages and package them with their same-origin assets as a zip",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP endpoint (POST /scrape)",
				Flags:  append(serve.Flags(), app.RuntimeFlags()...),
				Action: serve.ServeAction,
			},
			{
				Name:      "clone",
				Usage:     "clone the pages listed in a YAML or JSON file",
				UsageText: "site-cloner clone --pages pages.yaml [--out site.zip]",
				Flags:     append(clone.Flags(), app.RuntimeFlags()...),
				Action:    clone.CloneAction,
			},
			{
				Name:  "jobs",
				Usage: "list recent clone jobs",
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of jobs to show"},
				},
				Action: jobs.JobsAction,
			},
			{
				Name:      "job",
				Usage:     "show one job and its pages (latest when no id is given)",
				ArgsUsage: "[job-id]",
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "table or yaml"},
				},
				Action: jobs.JobAction,
			},
			{
				Name:  "quickstart",
				Usage: "print example commands and the archive layout",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.QuickstartYAML)
					return nil
				},
			},
		},
	}

	if err := a.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
