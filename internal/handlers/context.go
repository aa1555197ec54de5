package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext returns the request's context, falling back to Background
// when the handler runs without a real request (direct invocation in tests).
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
