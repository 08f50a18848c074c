package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"arclip/internal/capture"
	"arclip/internal/core"
	"arclip/internal/library"
	"arclip/internal/notes"
	"arclip/internal/player"
	"arclip/internal/ratelimit"
	"arclip/internal/store"
	"arclip/pkg/archive"
)

// Resolver turns an identifier or archive.org URL into a media resolution.
type Resolver interface {
	Resolve(ctx context.Context, input string, opts archive.ResolveOptions) (*archive.MediaResolution, error)
}

// Capturer records one clip from a playback handle.
type Capturer interface {
	Capture(ctx context.Context, handle player.Handle, req capture.Request) (*capture.Result, error)
}

// ClipWriter persists clip payloads.
type ClipWriter interface {
	SaveClip(name string, data []byte) (string, error)
}

// ClipCatalog records and lists persisted clips.
type ClipCatalog interface {
	Add(ctx context.Context, clip library.Clip) error
	List(ctx context.Context, identifier string) ([]library.Clip, error)
	Find(ctx context.Context, identifier string, start, end int) (*library.Clip, error)
}

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics

	resolver Resolver
	capturer Capturer
	vault    ClipWriter
	catalog  ClipCatalog
	dedup    *store.DedupStore
	limiter  *ratelimit.Limiter

	maxClipSeconds float64
}

type Metrics struct {
	ResolvesTotal   *prometheus.CounterVec
	CapturesTotal   *prometheus.CounterVec
	DuplicatesTotal prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	ResolveTime     prometheus.Histogram
	CaptureTime     prometheus.Histogram
	ClipBytes       prometheus.Histogram
}

// Deps are the collaborators behind the API surface.
type Deps struct {
	Resolver Resolver
	Capturer Capturer
	Vault    ClipWriter
	Catalog  ClipCatalog
	Dedup    *store.DedupStore
	// MaxClipSeconds must match the capture engine's clamp so dedup keys are
	// derived from the same effective range the engine records.
	MaxClipSeconds float64
}

func NewServer(config *core.ServerConfig, deps Deps, logger *zap.Logger) *Server {
	metrics := &Metrics{
		ResolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arclip_resolves_total",
				Help: "Total number of resolve requests",
			},
			[]string{"status"},
		),
		CapturesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arclip_captures_total",
				Help: "Total number of clip captures",
			},
			[]string{"format", "status"},
		),
		DuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arclip_duplicates_total",
				Help: "Total number of duplicate clip requests rejected",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arclip_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		ResolveTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arclip_resolve_duration_seconds",
				Help:    "Time spent resolving items",
				Buckets: prometheus.DefBuckets,
			},
		),
		CaptureTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arclip_capture_duration_seconds",
				Help:    "Time spent capturing clips",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		ClipBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arclip_clip_bytes",
				Help:    "Size of captured clip payloads",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		metrics.ResolvesTotal,
		metrics.CapturesTotal,
		metrics.DuplicatesTotal,
		metrics.ErrorsTotal,
		metrics.ResolveTime,
		metrics.CaptureTime,
		metrics.ClipBytes,
	)

	s := &Server{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		resolver: deps.Resolver,
		capturer: deps.Capturer,
		vault:    deps.Vault,
		catalog:  deps.Catalog,
		dedup:    deps.Dedup,

		maxClipSeconds: deps.MaxClipSeconds,
	}
	if s.maxClipSeconds <= 0 {
		s.maxClipSeconds = core.DefaultConfig().Capture.MaxClipSeconds
	}
	if config.APIRequestsPerMinute > 0 {
		s.limiter = ratelimit.New(config.APIRequestsPerMinute)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"arclip"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"arclip"}`))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/resolve", s.limited(s.handleResolve))
	mux.HandleFunc("/api/clip", s.limited(s.handleClip))
	mux.HandleFunc("/api/clips", s.limited(s.handleClips))

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

// limited wraps an API handler with the per-client rate limiter.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			client := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				client = host
			}
			if !s.limiter.Allow(client) {
				s.metrics.ErrorsTotal.WithLabelValues("http", "throttled").Inc()
				s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	item := r.URL.Query().Get("item")
	if item == "" {
		s.writeError(w, http.StatusBadRequest, "missing item parameter")
		return
	}

	var opts archive.ResolveOptions
	if raw := r.URL.Query().Get("start"); raw != "" {
		opts.StartSeconds = float64(archive.ParseHMS(raw))
	}

	started := time.Now()
	res, err := s.resolver.Resolve(r.Context(), item, opts)
	s.metrics.ResolveTime.Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.ResolvesTotal.WithLabelValues("error").Inc()
		s.writeResolveError(w, err)
		return
	}

	s.metrics.ResolvesTotal.WithLabelValues("ok").Inc()
	s.writeJSON(w, http.StatusOK, res)
}

type clipRequest struct {
	Item  string  `json:"item"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type clipResponse struct {
	Identifier string  `json:"identifier"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Format     string  `json:"format"`
	Path       string  `json:"path"`
	Bytes      int     `json:"bytes"`
	Embed      string  `json:"embed"`
}

func (s *Server) handleClip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req clipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Item == "" {
		s.writeError(w, http.StatusBadRequest, "missing item")
		return
	}

	res, err := s.resolver.Resolve(r.Context(), req.Item, archive.ResolveOptions{StartSeconds: req.Start})
	if err != nil {
		s.metrics.CapturesTotal.WithLabelValues("", "resolve_error").Inc()
		s.writeResolveError(w, err)
		return
	}
	if res.BestFileURL == "" {
		s.metrics.CapturesTotal.WithLabelValues("", "no_playable").Inc()
		s.writeError(w, http.StatusUnprocessableEntity, "item has no playable file")
		return
	}

	// Key on the effective range the engine will record, not the raw request,
	// so a clamped or inverted request dedups against its normalized twin.
	effStart, effEnd := capture.NormalizeRange(req.Start, req.End, s.maxClipSeconds)
	key := store.ClipKey(res.Identifier, int(effStart), int(effEnd))
	if s.dedup != nil && s.dedup.Has(key) {
		s.metrics.DuplicatesTotal.Inc()
		payload := map[string]any{"error": "clip already captured"}
		if s.catalog != nil {
			if existing, err := s.catalog.Find(r.Context(), res.Identifier, int(effStart), int(effEnd)); err == nil && existing != nil {
				payload["clip"] = existing
			}
		}
		s.writeJSON(w, http.StatusConflict, payload)
		return
	}

	started := time.Now()
	result, err := s.capturer.Capture(r.Context(), player.NewNative(res.BestFileURL), capture.Request{
		Start: req.Start,
		End:   req.End,
	})
	s.metrics.CaptureTime.Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.CapturesTotal.WithLabelValues("", "error").Inc()
		s.writeCaptureError(w, err)
		return
	}

	name := notes.ClipFileName(time.Now(), int(result.Start), int(result.End), result.Format)
	path, err := s.vault.SaveClip(name, result.Data)
	if err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("vault", "persist").Inc()
		s.logger.Error("Failed to persist clip", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to persist clip")
		return
	}

	clip := library.Clip{
		ID:         uuid.NewString(),
		Identifier: res.Identifier,
		Start:      int(result.Start),
		End:        int(result.End),
		Format:     result.Format,
		Path:       path,
		CreatedAt:  time.Now().UTC(),
	}
	if s.catalog != nil {
		if err := s.catalog.Add(r.Context(), clip); err != nil {
			s.metrics.ErrorsTotal.WithLabelValues("library", "catalog").Inc()
			s.logger.Error("Failed to catalog clip",
				zap.String("clip", clip.ID),
				zap.Error(err))
		}
	}
	if s.dedup != nil {
		s.dedup.Add(clip.Key())
	}

	s.metrics.CapturesTotal.WithLabelValues(result.Format, "ok").Inc()
	s.metrics.ClipBytes.Observe(float64(len(result.Data)))
	s.logger.Info("Clip captured",
		zap.String("identifier", res.Identifier),
		zap.String("format", result.Format),
		zap.Int("bytes", len(result.Data)))

	s.writeJSON(w, http.StatusCreated, clipResponse{
		Identifier: res.Identifier,
		Start:      result.Start,
		End:        result.End,
		Format:     result.Format,
		Path:       path,
		Bytes:      len(result.Data),
		Embed:      notes.ClipEmbedLink(name, int(result.Start), int(result.End)),
	})
}

func (s *Server) handleClips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.catalog == nil {
		s.writeError(w, http.StatusNotFound, "no clip catalog configured")
		return
	}

	item := r.URL.Query().Get("item")
	if item == "" {
		s.writeError(w, http.StatusBadRequest, "missing item parameter")
		return
	}

	clips, err := s.catalog.List(r.Context(), archive.ExtractIdentifier(item))
	if err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("library", "list").Inc()
		s.logger.Error("Failed to list clips", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list clips")
		return
	}
	if clips == nil {
		clips = []library.Clip{}
	}

	s.writeJSON(w, http.StatusOK, clips)
}

func (s *Server) writeResolveError(w http.ResponseWriter, err error) {
	var notFound *archive.NotFoundError
	var remote *archive.RemoteError
	var network *archive.NetworkError
	var format *archive.FormatError

	switch {
	case errors.As(err, &notFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &remote), errors.As(err, &network):
		s.metrics.ErrorsTotal.WithLabelValues("archive", "upstream").Inc()
		s.writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &format):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.metrics.ErrorsTotal.WithLabelValues("archive", "internal").Inc()
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeCaptureError(w http.ResponseWriter, err error) {
	var prep *capture.MediaPrepError
	var graph *capture.AudioGraphError

	switch {
	case errors.Is(err, capture.ErrCaptureBusy):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, capture.ErrEmptyCapture):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &prep):
		s.metrics.ErrorsTotal.WithLabelValues("capture", "prep").Inc()
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &graph):
		s.metrics.ErrorsTotal.WithLabelValues("capture", "graph").Inc()
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.metrics.ErrorsTotal.WithLabelValues("capture", "internal").Inc()
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
