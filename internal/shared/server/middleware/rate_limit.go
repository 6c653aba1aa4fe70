package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tailorhire-api/internal/shared/ratelimit"
	"tailorhire-api/internal/shared/server/respond"
)

const rateLimitedPrefix = "/api/"

// RateLimit applies limiter to /api/* requests keyed by client address.
// Denied requests get 429 with a Retry-After header in whole seconds.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !strings.HasPrefix(c.Request.URL.Path, rateLimitedPrefix) {
			c.Next()
			return
		}

		decision := limiter.CheckAndRecord(c.Request.Context(), c.ClientIP(), limiter.Clock())
		if decision.Allowed {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
		if retryAfter < 0 {
			retryAfter = 0
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
			"retry_after": retryAfter,
			"limit":       limiter.Limit,
			"window":      int(limiter.Window.Seconds()),
		})
	}
}
