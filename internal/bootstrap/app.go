// Package bootstrap builds the config-driven dependencies and the router.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"tailorhire-api/internal/extract"
	"tailorhire-api/internal/llm"
	"tailorhire-api/internal/llm/gemini"
	"tailorhire-api/internal/llm/openai"
	"tailorhire-api/internal/llm/vertex"
	"tailorhire-api/internal/optimize"
	"tailorhire-api/internal/services/health"
	"tailorhire-api/internal/shared/config"
	"tailorhire-api/internal/shared/ratelimit"
	"tailorhire-api/internal/shared/server"
	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/internal/shared/workpool"
	"tailorhire-api/internal/uploads"
	"tailorhire-api/resume/render"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	Generator llm.Generator
	Invoker   *llm.Invoker
	Extractor *extract.Extractor
	Renderer  *render.Renderer
	Limiter   *ratelimit.Limiter
	Pool      *workpool.Pool

	OptimizeService *optimize.Service
	OptimizeHandler *optimize.Handler
	UploadHandler   *uploads.Handler

	closers []io.Closer
}

// Build prepares every dependency and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	app := &App{Config: cfg}

	gen, err := BuildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Generator = gen
	if c, ok := gen.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	store := buildLimiterStore(ctx, cfg)
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	app.Limiter = ratelimit.New(store, cfg.RateLimitRequests, cfg.RateLimitWindow)

	renderer, err := render.NewRenderer(render.NewChromeConverter(cfg.ChromePath))
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	app.Invoker = llm.NewInvoker(gen, cfg.LLMTimeout)
	app.Extractor = extract.New()
	app.Renderer = renderer
	app.Pool = workpool.New(cfg.WorkerPoolSize)
	app.OptimizeService = optimize.NewService(app.Invoker, app.Renderer, app.Pool)
	app.OptimizeHandler = optimize.NewHandler(app.OptimizeService)
	app.UploadHandler = uploads.NewHandler(app.Extractor, app.Pool, cfg.MaxUploadBytes)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Limiter:         app.Limiter,
		Health:          health.NewService(),
		OptimizeHandler: app.OptimizeHandler,
		UploadHandler:   app.UploadHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":               cfg.Env,
		"provider":          gen.Name(),
		"rate_limit":        cfg.RateLimitRequests,
		"rate_limit_window": cfg.RateLimitWindow.Seconds(),
		"workers":           app.Pool.Size(),
	})
	return app, nil
}

// Close drains the worker pool and releases clients.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Pool != nil {
		if err := a.Pool.Close(ctx); err != nil {
			telemetry.Warn("bootstrap.pool_close", map[string]any{"err": err.Error()})
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			telemetry.Warn("bootstrap.close", map[string]any{"err": err.Error()})
		}
	}
	a.closers = nil
}

// BuildGenerator selects the model provider. Missing credentials are fatal
// outside dev-like environments; otherwise a placeholder is used.
func BuildGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	gen, err := newGenerator(ctx, cfg)
	if err == nil {
		return gen, nil
	}
	if cfg.IsDevLike() {
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{
			"provider": cfg.LLMProvider,
			"err":      err.Error(),
		})
		return llm.PlaceholderGenerator{}, nil
	}
	return nil, err
}

var errMissingCredential = errors.New("missing model credential")

func newGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", errMissingCredential)
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "vertex":
		if cfg.VertexProject == "" {
			return nil, fmt.Errorf("%w: VERTEX_PROJECT", errMissingCredential)
		}
		return vertex.NewClient(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.LLMModel)
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY", errMissingCredential)
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	}
}

// buildLimiterStore falls back to memory when the shared store is unreachable.
func buildLimiterStore(ctx context.Context, cfg config.Config) ratelimit.Store {
	var (
		store ratelimit.Store
		err   error
	)
	switch cfg.RateLimitBackend {
	case "redis":
		store, err = ratelimit.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
	case "valkey":
		store, err = ratelimit.NewValkeyStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
	default:
		return ratelimit.NewMemoryStore()
	}
	if err != nil {
		telemetry.Warn("bootstrap.ratelimit_store_fallback", map[string]any{
			"backend": cfg.RateLimitBackend,
			"addr":    cfg.RedisAddr,
			"err":     err.Error(),
		})
		return ratelimit.NewMemoryStore()
	}
	return store
}
