package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	iauth "github.com/docsentry/docsentry/internal/auth"
	"github.com/docsentry/docsentry/internal/authz"
	"github.com/docsentry/docsentry/internal/handlers"
	"github.com/docsentry/docsentry/internal/middleware"
)

// Deps carries the wired engine components the router mounts.
type Deps struct {
	JWT         *iauth.JWTService
	Evaluator   *authz.Evaluator
	Cache       *authz.PermissionCache
	Invalidator *authz.Invalidator
	Store       authz.Store
}

// NewRouter builds the Gin engine, wires middleware and registers the
// observability and admin routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Evaluator == nil {
		return nil, fmt.Errorf("evaluator must be provided")
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("permission cache must be provided")
	}
	if deps.Invalidator == nil {
		return nil, fmt.Errorf("invalidator must be provided")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("permission store must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Public endpoints
	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	if err := registerCacheRoutes(api, deps); err != nil {
		return nil, err
	}
	if err := registerPermissionRoutes(api, deps); err != nil {
		return nil, err
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
