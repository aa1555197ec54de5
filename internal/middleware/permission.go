package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/docsentry/docsentry/internal/authz"
	"github.com/docsentry/docsentry/pkg/errors"
	"github.com/docsentry/docsentry/pkg/response"
)

// RequireAuthority gates a route group on a coarse authority. Every denial,
// whatever its cause, renders the same FORBIDDEN envelope.
func RequireAuthority(evaluator *authz.Evaluator, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUsernameKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		username, _ := v.(string)
		if !evaluator.Decide(c.Request.Context(), username, code) {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
