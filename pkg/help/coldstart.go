package help

// QuickstartYAML is printed by the quickstart command.
const QuickstartYAML = `# site-cloner Quick Start

renderers:
  browser: "Headless Chrome, runs page scripts (default)"
  http: "Plain GET, no scripts, no Chrome needed"

commands:
  clone_file: |
    site-cloner clone --pages pages.yaml --out site.zip

  clone_without_chrome: |
    site-cloner clone --pages pages.yaml --renderer http

  serve: |
    site-cloner serve --addr :5000

  scrape_request: |
    curl -X POST localhost:5000/scrape \
      -H 'Content-Type: application/json' \
      -d '{"pages":[{"url":"https://example.com/","title":"Home"}]}' \
      -o example_com_clone.zip

  list_jobs: |
    site-cloner jobs --limit 10

  job_details: |
    site-cloner job              # latest job
    site-cloner job <job-id> --format yaml

pages_file: |
  pages:
    - url: https://example.com/
      title: Home
    - url: https://example.com/about
      title: About Us

archive_layout:
  "<safe_title>.html": "one file per page; title lowercased, spaces to underscores, empty title becomes index"
  "assets/<hash><ext>": "same-origin link, script, img and source files; names are stable per url"

rules:
  - "Entries without url or title are skipped"
  - "Cross-origin, data:, javascript: and # references are left as they are"
  - "A failed asset download keeps the original reference"
  - "A page that fails to render aborts the whole job; no archive is produced"

env:
  SITE_CLONER_WORK_DIR: "root for per-job working directories (default temp_scraper_work)"
  SITE_CLONER_RENDERER: "browser or http"
  SITE_CLONER_SETTLE_DELAY: "wait after load before capturing the DOM (default 5s)"
  SITE_CLONER_ASSET_TIMEOUT: "per-asset download timeout (default 20s)"
  SITE_CLONER_REMOTE_BROWSER: "DevTools URL of an external Chrome"
  SITE_CLONER_DB: "job history database path"
  SITE_CLONER_ADDR: "listen address for serve (default :5000)"
`
