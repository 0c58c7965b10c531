// Package api contains the HTTP handlers for the blueprint service
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// BlueprintService runs generation pipelines on behalf of API callers.
type BlueprintService interface {
	Generate(ctx context.Context, scope blueprint.Scope) (*blueprint.Blueprint, error)
}

// SolutionLister lists the target environment's installed solutions.
type SolutionLister interface {
	ListSolutions(ctx context.Context) ([]dataverse.Solution, error)
}

// Server holds the dependencies for the API server.
type Server struct {
	Service   BlueprintService
	Solutions SolutionLister
}

// NewServer creates a new Server.
func NewServer(service BlueprintService, solutions SolutionLister) *Server {
	return &Server{Service: service, Solutions: solutions}
}

// RegisterRoutes mounts the blueprint endpoints on the given route group.
func (s *Server) RegisterRoutes(g *echo.Group) {
	g.POST("/blueprints", s.GenerateBlueprint)
	g.GET("/solutions", s.ListSolutions)
}

// GenerateBlueprint runs one generation for the scope in the request body
// (POST /api/v1/blueprints)
func (s *Server) GenerateBlueprint(c echo.Context) error {
	ctx := c.Request().Context()

	var scope blueprint.Scope
	if err := c.Bind(&scope); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := scope.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bp, err := s.Service.Generate(ctx, scope)
	if err != nil {
		// The client went away; there is nobody left to respond to.
		if errors.Is(err, context.Canceled) {
			return err
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, bp)
}

// ListSolutions returns the environment's visible solutions
// (GET /api/v1/solutions)
func (s *Server) ListSolutions(c echo.Context) error {
	ctx := c.Request().Context()

	solutions, err := s.Solutions.ListSolutions(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, solutions)
}
