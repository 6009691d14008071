// Package api serves stored citations over a read-only JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/store"
)

// maxLimit caps the page size of list endpoints.
const maxLimit = 1000

// Reader is the subset of store.Store the API reads from.
type Reader interface {
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	GetCitation(ctx context.Context, id string) (*model.Citation, error)
	ListCitations(ctx context.Context, filter store.CitationFilter) ([]model.Citation, error)
	ListVolumes(ctx context.Context) ([]store.VolumeSummary, error)
	ListRejected(ctx context.Context, volume string) ([]model.Rejected, error)
	Stats(ctx context.Context) (*store.Stats, error)
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

// NewRouter builds the HTTP handler for the read API.
func NewRouter(st Reader, opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	h := &handler{store: st}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Get("/volumes", h.listVolumes)
	r.Get("/stats", h.stats)
	r.Get("/rejected", h.listRejected)
	r.Get("/runs/{id}", h.getRun)
	r.Route("/citations", func(r chi.Router) {
		r.Get("/", h.listCitations)
		r.Get("/{id}", h.getCitation)
	})

	return r
}

type handler struct {
	store Reader
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listVolumes(w http.ResponseWriter, r *http.Request) {
	volumes, err := h.store.ListVolumes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if volumes == nil {
		volumes = []store.VolumeSummary{}
	}
	writeJSON(w, http.StatusOK, volumes)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*store.Stats
		ParseRate float64 `json:"parse_rate"`
	}{st, st.ParseRate()})
}

func (h *handler) listCitations(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCitationFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	citations, err := h.store.ListCitations(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if citations == nil {
		citations = []model.Citation{}
	}
	writeJSON(w, http.StatusOK, citations)
}

func (h *handler) getCitation(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCitation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handler) listRejected(w http.ResponseWriter, r *http.Request) {
	rejected, err := h.store.ListRejected(r.Context(), r.URL.Query().Get("volume"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rejected == nil {
		rejected = []model.Rejected{}
	}
	writeJSON(w, http.StatusOK, rejected)
}

// parseCitationFilter reads volume, type, fully_parsed, limit and offset
// from the query string.
func parseCitationFilter(r *http.Request) (store.CitationFilter, error) {
	q := r.URL.Query()
	filter := store.CitationFilter{
		Volume: q.Get("volume"),
		Type:   q.Get("type"),
	}

	if v := q.Get("fully_parsed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, eris.Errorf("invalid fully_parsed %q", v)
		}
		filter.FullyParsed = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, eris.Errorf("invalid limit %q", v)
		}
		filter.Limit = min(n, maxLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, eris.Errorf("invalid offset %q", v)
		}
		filter.Offset = n
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if eris.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	zap.L().Error("api: request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// requestLogger logs each request through zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
