package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/docsentry/docsentry/internal/authz"
	"github.com/docsentry/docsentry/internal/middleware"
	"github.com/docsentry/docsentry/internal/permissions"
	apperrors "github.com/docsentry/docsentry/pkg/errors"
	"github.com/docsentry/docsentry/pkg/response"
)

// PermissionHandler serves the read-only permission introspection endpoints.
type PermissionHandler struct {
	cache *authz.PermissionCache
}

func NewPermissionHandler(cache *authz.PermissionCache) (*PermissionHandler, error) {
	if cache == nil {
		return nil, errors.New("handlers: permission cache is required")
	}
	return &PermissionHandler{cache: cache}, nil
}

// GET /api/permissions/registry
func (h *PermissionHandler) Registry(c *gin.Context) {
	response.Success(c, http.StatusOK, permissions.GetAll())
}

// GET /api/permissions/my
func (h *PermissionHandler) MyPermissions(c *gin.Context) {
	username := c.GetString(middleware.CtxUsernameKey)
	if username == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	set, err := h.cache.GetUserPermissions(requestContext(c), username)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to load permissions"))
		return
	}

	codes := make([]string, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	response.Success(c, http.StatusOK, gin.H{
		"username":    username,
		"permissions": codes,
	})
}
