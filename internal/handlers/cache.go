package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docsentry/docsentry/internal/authz"
	apperrors "github.com/docsentry/docsentry/pkg/errors"
	"github.com/docsentry/docsentry/pkg/response"
)

// CacheHandler exposes the permission cache's admin surface: stats, backend
// configuration, and targeted eviction.
type CacheHandler struct {
	cache       *authz.PermissionCache
	invalidator *authz.Invalidator
	store       authz.Store
}

func NewCacheHandler(cache *authz.PermissionCache, invalidator *authz.Invalidator, store authz.Store) (*CacheHandler, error) {
	if cache == nil || invalidator == nil || store == nil {
		return nil, errors.New("handlers: cache handler dependencies are required")
	}
	return &CacheHandler{cache: cache, invalidator: invalidator, store: store}, nil
}

// GET /api/cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	response.Success(c, http.StatusOK, h.cache.Stats())
}

// GET /api/cache/config
func (h *CacheHandler) Config(c *gin.Context) {
	info := h.cache.Backend()
	response.Success(c, http.StatusOK, gin.H{
		"backend": info.Kind,
		"ttl": gin.H{
			"permissions": info.TTL.Permissions.String(),
			"assignments": info.TTL.Assignments.String(),
			"visibility":  info.TTL.Visibility.String(),
		},
	})
}

type evictUserRequest struct {
	// Documents narrows assignment eviction to specific documents; empty
	// clears the user's whole assignment namespace.
	Documents []string `json:"documents" validate:"omitempty,dive,min=1"`
}

// DELETE /api/cache/users/:username
func (h *CacheHandler) EvictUser(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		response.Error(c, apperrors.ErrBadRequest)
		return
	}

	var body evictUserRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &body) {
			return
		}
	}

	ctx := requestContext(c)
	if err := h.invalidator.UserRolesChanged(ctx, username); err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to evict permission entry"))
		return
	}

	userID, err := h.store.UserIDForUsername(ctx, username)
	if err != nil {
		if errors.Is(err, authz.ErrUserNotFound) {
			// Permission entry is already gone; nothing else to evict.
			response.Success(c, http.StatusOK, gin.H{"evicted": username})
			return
		}
		response.Error(c, apperrors.Wrap(err, "failed to resolve user"))
		return
	}

	if err := h.cache.EvictAssignments(ctx, userID, body.Documents...); err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to evict assignment entries"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"evicted": username})
}
