// Package httpserver runs the API behind liveness, readiness and drain
// endpoints and shuts it down gracefully.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"truetrace/internal/platform/metrics"
	"truetrace/pkg/platform/middleware/admin"
)

// Check reports whether a dependency is usable. A failing check makes the
// server not ready.
type Check func(ctx context.Context) error

type Config struct {
	ListenAddr  string
	MetricsAddr string
	AdminToken  string
	Log         *slog.Logger

	DrainDuration            time.Duration
	GracefulShutdownDuration time.Duration
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
}

type Server struct {
	cfg     Config
	isReady atomic.Bool
	log     *slog.Logger
	checks  map[string]Check

	srv        *http.Server
	metricsSrv *http.Server
}

// New wraps api with the operational routes. api is mounted at the root.
func New(cfg Config, api http.Handler, checks map[string]Check) (*Server, error) {
	if api == nil {
		return nil, errors.New("api handler is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	s := &Server{cfg: cfg, log: cfg.Log, checks: checks}
	s.isReady.Store(true)

	s.srv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router(api),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	if cfg.MetricsAddr != "" {
		mux := chi.NewRouter()
		mux.Handle("/metrics", metrics.Handler())
		s.metricsSrv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s, nil
}

// Handler is the full router, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) router(api http.Handler) http.Handler {
	mux := chi.NewRouter()
	mux.Use(s.httpLogger)

	mux.Get("/livez", s.handleLiveness)
	mux.Get("/healthz", s.handleLiveness)
	mux.Get("/readyz", s.handleReadiness)
	mux.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(s.cfg.AdminToken, s.log))
		r.Post("/drain", s.handleDrain)
		r.Post("/undrain", s.handleUndrain)
	})
	if s.cfg.MetricsAddr == "" {
		mux.Handle("/metrics", metrics.Handler())
	}
	mux.Mount("/", api)
	return mux
}

func (s *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(s.log, next)
}

func writeStatus(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, `{"status":"alive"}`)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !s.isReady.Load() {
		writeStatus(w, http.StatusServiceUnavailable, `{"status":"draining"}`)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.log.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"not ready"}`)
			return
		}
	}
	writeStatus(w, http.StatusOK, `{"status":"ready"}`)
}

func (s *Server) handleDrain(w http.ResponseWriter, _ *http.Request) {
	if !s.isReady.Swap(false) {
		writeStatus(w, http.StatusOK, `{"status":"already draining"}`)
		return
	}
	s.log.Info("server marked as not ready")
	writeStatus(w, http.StatusOK, `{"status":"draining"}`)
}

func (s *Server) handleUndrain(w http.ResponseWriter, _ *http.Request) {
	if s.isReady.Swap(true) {
		writeStatus(w, http.StatusOK, `{"status":"already ready"}`)
		return
	}
	s.log.Info("server marked as ready")
	writeStatus(w, http.StatusOK, `{"status":"ready"}`)
}

// Run serves until ctx is cancelled, then marks the server not ready, waits
// DrainDuration for load balancers to notice and shuts down.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("starting HTTP server", "listen_addr", s.cfg.ListenAddr)
		return serve(s.srv)
	})
	if s.metricsSrv != nil {
		g.Go(func() error {
			s.log.Info("starting metrics server", "metrics_addr", s.cfg.MetricsAddr)
			return serve(s.metricsSrv)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})
	return g.Wait()
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})
	return g.Wait()
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdown() {
	if s.isReady.Swap(false) && s.cfg.DrainDuration > 0 {
		s.log.Info("draining", "duration", s.cfg.DrainDuration)
		time.Sleep(s.cfg.DrainDuration)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error("graceful HTTP server shutdown failed", "error", err)
	} else {
		s.log.Info("HTTP server gracefully stopped")
	}
	if s.metricsSrv != nil {
		if err := s.metricsSrv.Shutdown(ctx); err != nil {
			s.log.Error("graceful metrics server shutdown failed", "error", err)
		}
	}
}
