package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/database"
	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/ConceptCodes/deep-sql-research/internal/workflow"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// handleGenerate runs a full generation and returns the result with the
// template inline.
func (s *Server) handleGenerate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Goal = strings.TrimSpace(req.Goal)
	req.Database = strings.TrimSpace(req.Database)
	if req.Goal == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "goal is required")
	}
	if req.Database == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "database is required")
	}

	res, err := s.gen.Generate(c.Request().Context(), app.GenerateRequest{Goal: req.Goal, Database: req.Database})
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, res)
}

// statusFor maps run failures to HTTP status. Upstream model failures and
// templates that fail validation are reported as 502.
func statusFor(err error) int {
	var genErr *oracle.GenerationError
	switch {
	case errors.Is(err, workflow.ErrEmptyGoal), errors.Is(err, app.ErrMissingDatabase):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrConnection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &genErr), errors.Is(err, model.ErrInvalidTemplate):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
