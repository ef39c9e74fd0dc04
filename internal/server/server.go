// Package server exposes template generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
)

// Generator produces a template for a goal and database.
type Generator interface {
	Generate(ctx context.Context, req app.GenerateRequest) (*app.GenerateResult, error)
}

// Config configures the HTTP server.
type Config struct {
	Addr string
	// AllowedOrigins lists browser origins allowed by CORS. Empty disables CORS.
	AllowedOrigins []string
}

type Server struct {
	echo    *echo.Echo
	gen     Generator
	metrics http.Handler
	logger  *slog.Logger
	addr    string
}

// New builds the server. metrics may be nil, in which case /metrics is not
// mounted.
func New(cfg Config, gen Generator, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, gen: gen, metrics: metrics, logger: logger, addr: cfg.Addr}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType},
		}))
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves in the background. Errors other than a clean shutdown are sent
// to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.logger.Info("listening", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
