package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/agencydash/internal/config"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second

	// ShutdownTimeout bounds the graceful shutdown after the context ends.
	ShutdownTimeout = 10 * time.Second
)

// Server is the dashboard HTTP server.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	version string
	handler http.Handler

	// configDigest is viewConfig for cfg, fixed at construction.
	configDigest string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and render logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version shown in the page footer.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New creates a server for cfg. The configuration is read on every request
// and must not be changed afterwards.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.configDigest = viewConfig(cfg, s.version)

	router := mux.NewRouter()
	router.HandleFunc(RouteIndex, s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(RouteChartSVG, s.handleChartSVG).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(RouteChartPNG, s.handleChartPNG).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(RouteGeoJSON, s.handleGeoJSON).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(RouteAgencies, s.handleAgencies).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(RouteHealth, s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	router.Use(withRequestID, s.withAccessLog)

	s.handler = router
	// rs/cors allows every origin when none are listed, so CORS is only
	// switched on for configured origins.
	if len(cfg.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "If-None-Match", HeaderRequestID},
			ExposedHeaders: []string{"ETag", HeaderRequestID},
		})
		s.handler = c.Handler(router)
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("dashboard listening",
			"addr", ln.Addr().String(),
			"data", s.cfg.DataFile,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down dashboard")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})
	return g.Wait()
}
