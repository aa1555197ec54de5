package api

import (
	"github.com/gin-gonic/gin"

	"github.com/docsentry/docsentry/internal/handlers"
	"github.com/docsentry/docsentry/internal/middleware"
	"github.com/docsentry/docsentry/internal/permissions"
)

func registerPermissionRoutes(api *gin.RouterGroup, deps Deps) error {
	handler, err := handlers.NewPermissionHandler(deps.Cache)
	if err != nil {
		return err
	}

	perms := api.Group("/permissions")
	{
		perms.GET("/my", handler.MyPermissions)
		perms.GET("/registry", middleware.RequireAuthority(deps.Evaluator, permissions.CacheMonitor), handler.Registry)
	}
	return nil
}
