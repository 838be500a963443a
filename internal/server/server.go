// Package server exposes the categorization pipeline over HTTP. The routes
// mirror the review workflow: upload a file, inspect progress, ask for
// category proposals, confirm mappings, read stats.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkozlov/bucketeer/internal/engine"
	"github.com/pkozlov/bucketeer/internal/model"
	"github.com/pkozlov/bucketeer/internal/progress"
	"github.com/pkozlov/bucketeer/internal/prom"
	"github.com/pkozlov/bucketeer/internal/storage"
	"github.com/pkozlov/bucketeer/internal/trace"
)

const metricsNamespace = "bucketeer"

// CategoryStore is the slice of the history store the server needs.
type CategoryStore interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	CategorySet(ctx context.Context) (model.CategorySet, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	RemoveCategory(ctx context.Context, name string) error
	RecentExamples(ctx context.Context, limit int) ([]model.Example, error)
	RecordMapping(ctx context.Context, row model.Row, categoryName string) error
}

var _ CategoryStore = (*storage.Store)(nil)

// Server wires the stores and the categorizer behind an http.Handler.
type Server struct {
	store    CategoryStore
	progress *progress.Store
	engine   *engine.Categorizer
	logger   *slog.Logger
	metrics  *prom.Metrics
	registry *prometheus.Registry
}

// New wires the stores and a generation backend into a server. The generator
// is wrapped so every call feeds the generation counter.
func New(store CategoryStore, progressStore *progress.Store, gen engine.Generator, provider string, opts engine.Options, sink trace.Sink, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	metrics := prom.NewMetrics(metricsNamespace)
	metrics.Register(registry)

	s := &Server{
		store:    store,
		progress: progressStore,
		logger:   logger,
		metrics:  metrics,
		registry: registry,
	}
	s.engine = engine.New(&countingGenerator{
		inner:    gen,
		provider: provider,
		metrics:  metrics,
	}, opts, sink, logger)
	registry.MustRegister(prom.NewExporter(metricsNamespace, s))

	return s
}

type countingGenerator struct {
	inner    engine.Generator
	provider string
	metrics  *prom.Metrics
}

func (g *countingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	reply, err := g.inner.Generate(ctx, prompt)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	g.metrics.Generations.WithLabelValues(g.provider, outcome).Inc()
	return reply, err
}

// MappingStats feeds the Prometheus exporter from the progress file.
func (s *Server) MappingStats() (int, int, map[string]int, error) {
	f, err := s.progress.Load()
	if err != nil {
		return 0, 0, nil, err
	}

	byCategory := make(map[string]int)
	mapped := 0
	for _, state := range f.Rows {
		if state.Mapped {
			mapped++
			byCategory[state.Category]++
		}
	}
	return len(f.Rows), mapped, byCategory, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/health", s.instrument("health", s.handleHealth))
	mux.Handle("GET /api/categories", s.instrument("categories", s.handleGetCategories))
	mux.Handle("POST /api/categories", s.instrument("categories_create", s.handleCreateCategory))
	mux.Handle("DELETE /api/categories/{name}", s.instrument("categories_remove", s.handleRemoveCategory))
	mux.Handle("GET /api/progress", s.instrument("progress", s.handleGetProgress))
	mux.Handle("GET /api/stats", s.instrument("stats", s.handleGetStats))
	mux.Handle("GET /api/spending", s.instrument("spending", s.handleGetSpending))
	mux.Handle("POST /api/upload", s.instrument("upload", s.handleUpload))
	mux.Handle("POST /api/map-row", s.instrument("map_row", s.handleMapRow))
	mux.Handle("POST /api/categorize", s.instrument("categorize", s.handleCategorize))
	mux.Handle("POST /api/suggest-row", s.instrument("suggest_row", s.handleSuggestRow))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return mux
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h(rec, r)

		elapsed := time.Since(start)
		s.metrics.Requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		s.logger.Info("request",
			"handler", name,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
