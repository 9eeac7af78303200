// Package web serves the two-step expected value form, the explanation page and the
// JSON evaluation API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trio-ev/internal/config"
	"github.com/yourusername/trio-ev/internal/evaluator"
	"github.com/yourusername/trio-ev/internal/health"
	"github.com/yourusername/trio-ev/internal/logger"
	"github.com/yourusername/trio-ev/internal/metrics"
)

// Server is the calculator's HTTP server.
type Server struct {
	cfg         *config.Config
	evaluator   *evaluator.Evaluator
	renderer    *Renderer
	parser      *FormParser
	health      *health.Server
	logger      *logrus.Logger
	calcLogger  *logger.CalculatorLogger
	accessLog   *logger.AccessLogger
	rateLimiter *RateLimiter
	handler     http.Handler
}

// NewServer builds the router and middleware chain. The health server receives a
// "templates" readiness check.
func NewServer(cfg *config.Config, eval *evaluator.Evaluator, hs *health.Server, log *logrus.Logger) (*Server, error) {
	renderer, err := NewRenderer(log)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		evaluator:  eval,
		renderer:   renderer,
		parser:     NewFormParser(cfg.Calculator.MaxRunners),
		health:     hs,
		logger:     log,
		calcLogger: logger.NewCalculatorLogger(log),
		accessLog:  logger.NewAccessLogger(log),
	}

	hs.AddCheck("templates", health.CheckerFunc(renderer.Check))
	s.handler = s.routes()

	return s, nil
}

func (s *Server) routes() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/", s.handleIndex)
	router.HandlerFunc(http.MethodPost, "/", s.handleSubmit)
	router.HandlerFunc(http.MethodGet, "/explanation", s.handleExplanation)
	router.HandlerFunc(http.MethodPost, "/api/evaluate", s.handleAPIEvaluate)
	s.health.RegisterRoutes(router)

	known := map[string]bool{
		"/":             true,
		"/explanation":  true,
		"/api/evaluate": true,
		"/health":       true,
		"/live":         true,
		"/ready":        true,
	}
	exempt := []string{"/health", "/live", "/ready"}

	if s.cfg.Metrics.Enabled {
		router.Handler(http.MethodGet, s.cfg.Metrics.Path, metrics.Handler())
		known[s.cfg.Metrics.Path] = true
		exempt = append(exempt, s.cfg.Metrics.Path)
	}

	router.NotFound = http.HandlerFunc(s.handleNotFound)
	router.MethodNotAllowed = http.HandlerFunc(s.handleMethodNotAllowed)
	router.RedirectTrailingSlash = false

	var h http.Handler = router
	if s.cfg.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst, exempt, s.accessLog)
		h = s.rateLimiter.Middleware(h)
	}
	h = securityHeaders(h)
	h = withRequestLogging(s.accessLog, known)(h)
	h = withRequestID(h)

	return h
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases background resources held by the middleware.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// ListenAndServe serves on the configured address until ctx is cancelled, then
// shuts down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.GetServerAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.GetServerAddress(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.health.SetReady(true)
	s.logger.WithField("address", ln.Addr().String()).Info("HTTP server listening")

	select {
	case err := <-errCh:
		s.health.SetReady(false)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.health.SetReady(false)
	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
