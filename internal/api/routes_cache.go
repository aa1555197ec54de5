package api

import (
	"github.com/gin-gonic/gin"

	"github.com/docsentry/docsentry/internal/handlers"
	"github.com/docsentry/docsentry/internal/middleware"
	"github.com/docsentry/docsentry/internal/permissions"
)

func registerCacheRoutes(api *gin.RouterGroup, deps Deps) error {
	handler, err := handlers.NewCacheHandler(deps.Cache, deps.Invalidator, deps.Store)
	if err != nil {
		return err
	}

	cache := api.Group("/cache")
	{
		cache.GET("/stats", middleware.RequireAuthority(deps.Evaluator, permissions.CacheMonitor), handler.Stats)
		cache.GET("/config", middleware.RequireAuthority(deps.Evaluator, permissions.CacheMonitor), handler.Config)
		cache.DELETE("/users/:username", middleware.RequireAuthority(deps.Evaluator, permissions.CacheManage), handler.EvictUser)
	}
	return nil
}
