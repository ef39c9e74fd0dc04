package server

import "github.com/labstack/echo/v4"

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	v1 := s.echo.Group("/v1")
	v1.POST("/templates", s.handleGenerate)
}
