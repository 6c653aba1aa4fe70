package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tailorhire-api/internal/optimize"
	"tailorhire-api/internal/services/health"
	"tailorhire-api/internal/shared/config"
	"tailorhire-api/internal/shared/metrics"
	"tailorhire-api/internal/shared/ratelimit"
	"tailorhire-api/internal/shared/server/middleware"
	"tailorhire-api/internal/shared/server/respond"
	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/internal/uploads"
)

// RouterDeps holds everything the router needs to register routes.
type RouterDeps struct {
	Config          config.Config
	Limiter         *ratelimit.Limiter
	Health          *health.Service
	OptimizeHandler *optimize.Handler
	UploadHandler   *uploads.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	configureClientIP(r, deps.Config)

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(deps.Limiter),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if deps.OptimizeHandler != nil {
		deps.OptimizeHandler.RegisterRoutes(api)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	return r
}

// LambdaSourceIPHeader carries the API Gateway source IP. The Lambda entry
// point overwrites it on every event, so clients cannot supply it.
const LambdaSourceIPHeader = "X-Lambda-Source-Ip"

// configureClientIP limits which peers may set the client address through
// forwarding headers. With no trusted proxies ClientIP is the socket peer.
func configureClientIP(r *gin.Engine, cfg config.Config) {
	proxies := cfg.TrustedProxies
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		telemetry.Warn("server.trusted_proxies_invalid", map[string]any{
			"trusted_proxies": cfg.TrustedProxies,
			"err":             err.Error(),
		})
		_ = r.SetTrustedProxies(nil)
	}
	switch cfg.TrustedPlatform {
	case "cloudflare":
		r.TrustedPlatform = gin.PlatformCloudflare
	case "google", "appengine":
		r.TrustedPlatform = gin.PlatformGoogleAppEngine
	case "lambda":
		r.TrustedPlatform = LambdaSourceIPHeader
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
