package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"tailorhire-api/internal/shared/server/respond"
	"tailorhire-api/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. The stage recorded by
// the handler, if any, is kept for the request log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				stage := c.GetString(StageKey)
				if stage == "" {
					stage = "panic"
					c.Set(StageKey, stage)
				}
				telemetry.Error("http.panic", map[string]any{
					"request_id":   RequestIDFromContext(c),
					"failed_stage": stage,
					"err":          fmt.Sprint(rec),
					"stack":        string(debug.Stack()),
					"path":         c.Request.URL.Path,
					"method":       c.Request.Method,
				})
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
			}
		}()
		c.Next()
	}
}
