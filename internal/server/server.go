// Package server exposes snapshot fetches over HTTP.
//
// Routes:
//
//	GET /              liveness greeting
//	GET /healthz       status and version
//	GET /history       recent fetch journal records
//	GET /:org/:repo    aggregated text of the repository root
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/quantmind-br/reposnap/internal/utils"
)

const defaultShutdownTimeout = 10 * time.Second

// Server wraps the gin engine and the underlying http.Server
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *utils.Logger
}

// Options contains options for creating a Server
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	Handler         *Handler
	// Tracing enables the otelgin middleware
	Tracing     bool
	ServiceName string
	Logger      *utils.Logger
}

// New builds the engine, mounts the routes and wraps them in gzip compression
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if opts.Tracing {
		engine.Use(otelgin.Middleware(opts.ServiceName))
	}
	engine.Use(requestLogger(logger))
	RegisterRoutes(engine, opts.Handler)

	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           gzhttp.GzipHandler(engine),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Handler returns the root http.Handler, compression included
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("Listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("Request")
	}
}
