package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"docsum-backend/internal/shared/metrics"
	"docsum-backend/internal/shared/server/respond"
	"docsum-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into the 500 envelope. Nothing is written
// when the handler already started the response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			route := c.FullPath()
			metrics.IncPanic(route)
			telemetry.Error("http.panic", map[string]any{
				"request_id":  RequestIDFromContext(c),
				"user_id":     UserIDFromContext(c),
				"document_id": c.GetString("documentId"),
				"route":       route,
				"method":      c.Request.Method,
				"error":       fmt.Sprint(rec),
				"stack":       string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error")
		}()
		c.Next()
	}
}
