package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtnitsch/site-cloner/models"
	"github.com/dtnitsch/site-cloner/pkg/job"
)

const (
	msgInvalidRequest = "Invalid request. 'pages' array is required."
	msgNoPages        = "No pages provided for scraping."
)

// Cloner runs one clone job and returns its archive.
type Cloner interface {
	Clone(ctx context.Context, pages []models.PageRequest) (*job.Archive, error)
}

type handler struct {
	cloner Cloner
	logger *slog.Logger
}

// NewRouter returns the HTTP API. corsOrigin is sent as
// Access-Control-Allow-Origin on /scrape routes.
func NewRouter(cloner Cloner, corsOrigin string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{cloner: cloner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors("/scrape", corsOrigin))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/scrape", h.handleScrape)

	return r
}

// cors answers preflight requests and sets the allow headers for paths
// under prefix.
func cors(prefix, origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// POST /scrape
func (h *handler) handleScrape(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", middleware.GetReqID(r.Context()))

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidRequest})
		return
	}
	raw, ok := body["pages"]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidRequest})
		return
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidRequest})
		return
	}
	pages := decodePages(entries, log)
	if len(pages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoPages})
		return
	}

	log.Info("Scrape request received", "pages", len(pages))
	arc, err := h.cloner.Clone(r.Context(), pages)
	if err != nil {
		if errors.Is(err, job.ErrNoPages) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoPages})
			return
		}
		log.Error("Scrape failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": job.UserMessage(err)})
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", arc.Name))
	w.Header().Set("Content-Length", fmt.Sprint(len(arc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(arc.Data); err != nil {
		log.Warn("Failed to send archive", "job_id", arc.JobID, "error", err)
	}
}

// decodePages decodes each entry on its own. An entry that is not a page
// object is kept as an empty request so the job skips it at its position.
func decodePages(entries []json.RawMessage, log *slog.Logger) []models.PageRequest {
	pages := make([]models.PageRequest, len(entries))
	for i, e := range entries {
		if err := json.Unmarshal(e, &pages[i]); err != nil {
			log.Warn("Ignoring malformed page entry", "position", i, "error", err)
			pages[i] = models.PageRequest{}
		}
	}
	return pages
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
