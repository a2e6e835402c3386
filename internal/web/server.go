// Package web serves the dashboard page, its JSON API, the sample backend
// and Prometheus metrics.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/mutker/dashmon/internal/alert"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/logger"
	"codeberg.org/mutker/dashmon/internal/models"
	"codeberg.org/mutker/dashmon/internal/source"
	"codeberg.org/mutker/dashmon/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultHistoryLimit = 50
	shutdownTimeout     = 5 * time.Second
	readHeaderTimeout   = 10 * time.Second
	maxBodyBytes        = 1 << 16
)

type Server struct {
	cfg     Config
	dash    Dashboard
	page    PageRenderer
	history telemetry.Recorder
	sample  source.Source
	log     logger.Logger
	ln      net.Listener
}

// New builds the server. history and sample may be nil; the sample backend
// is only mounted when enabled in cfg and sample is set.
func New(cfg Config, dash Dashboard, page PageRenderer, history telemetry.Recorder, sample source.Source) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if history == nil {
		history = telemetry.NewNoop()
	}

	return &Server{
		cfg:     cfg,
		dash:    dash,
		page:    page,
		history: history,
		sample:  sample,
		log:     logger.New("web"),
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleDashboard)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/alerts", s.handleAlerts)
		r.Post("/refresh", s.handleRefresh)
		r.Put("/filters", s.handleSetFilters)
		r.Delete("/filters", s.handleClearFilters)
		r.Post("/page", s.handleGoToPage)
		r.Post("/page/next", s.handleNextPage)
		r.Post("/page/prev", s.handlePrevPage)
		r.Get("/history", s.handleHistory)
	})

	if s.cfg.SampleBackend && s.sample != nil {
		r.Route("/sample", func(r chi.Router) {
			r.Get("/"+source.ResourceMetrics, s.handleSampleMetrics)
			r.Get("/"+source.ResourceLogs, s.handleSampleLogs)
		})
	}

	return r
}

// Listen binds the configured address so the sample backend is reachable
// before the first refresh.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.New().Wrap(ErrListen, err)
	}
	s.ln = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.cfg.Addr
}

// Serve handles requests until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errFactory := errors.New()

	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(s.ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errFactory.Wrap(ErrServeHTTP, err)
		}
		s.log.Info().Msg("HTTP server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errFactory.Wrap(ErrServeHTTP, err)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if page := s.page.Page(); page != nil {
		_, _ = w.Write(page)
		return
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, s.dash.View()); err != nil {
		s.log.Error().Err(err).Msg("Failed to render dashboard page")
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.View())
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts := s.dash.View().Alerts
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.dash.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "refresh_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.dash.View())
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var f models.Filters
	if err := decode(w, r, &f); err != nil {
		writeBadRequest(w, "invalid filter criteria: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.dash.SetFilters(f))
}

func (s *Server) handleClearFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.ClearFilters())
}

type pageRequest struct {
	Page int `json:"page"`
}

func (s *Server) handleGoToPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, "invalid page request: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.dash.GoToPage(req.Page))
}

func (s *Server) handleNextPage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.NextPage())
}

func (s *Server) handlePrevPage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.PrevPage())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	snapshots, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read history")
		writeError(w, http.StatusInternalServerError, "history_unavailable", "failed to read history")
		return
	}
	if snapshots == nil {
		snapshots = []telemetry.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handleSampleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.sample.FetchMetrics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sample_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleSampleLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.sample.FetchLogs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sample_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
