package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLLMTimeout    = 300 * time.Second
	defaultMaxUploadSize = 10 << 20
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	TrustedProxies  []string
	TrustedPlatform string

	LLMProvider    string
	LLMModel       string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	VertexProject  string
	VertexLocation string
	LLMTimeout     time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBackend  string
	RedisAddr         string
	RedisPassword     string

	LogLevel  string
	LogFormat string
	LogDir    string

	WorkerPoolSize int
	MaxUploadBytes int64
	ChromePath     string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyFile(path); err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	provider := normalizeProvider(getEnv("LLM_PROVIDER", "gemini"))

	return Config{
		Port:              getEnv("PORT", "8000"),
		Env:               env,
		CORSAllowOrigin:   splitAndTrim(getEnv("ALLOWED_ORIGINS", "*")),
		TrustedProxies:    splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
		TrustedPlatform:   strings.ToLower(getEnv("TRUSTED_PLATFORM", "")),
		LLMProvider:       provider,
		LLMModel:          getEnv("LLM_MODEL", defaultModel(provider)),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		VertexProject:     getEnv("VERTEX_PROJECT", ""),
		VertexLocation:    getEnv("VERTEX_LOCATION", "us-central1"),
		LLMTimeout:        getSeconds("LLM_TIMEOUT_SECONDS", defaultLLMTimeout),
		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getSeconds("RATE_LIMIT_WINDOW", time.Hour),
		RateLimitBackend:  normalizeBackend(getEnv("RATE_LIMIT_BACKEND", "memory")),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogDir:            logDir(),
		WorkerPoolSize:    getInt("WORKER_POOL_SIZE", runtime.NumCPU()),
		MaxUploadBytes:    int64(getInt("MAX_UPLOAD_BYTES", defaultMaxUploadSize)),
		ChromePath:        getEnv("CHROME_PATH", ""),
	}
}

// IsDevLike reports whether the environment tolerates missing credentials.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func logDir() string {
	if dir, ok := os.LookupEnv("LOG_DIR"); ok {
		return strings.TrimSpace(dir)
	}
	return "./logs"
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getSeconds(key string, def time.Duration) time.Duration {
	secs := getInt(key, 0)
	if secs == 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "vertex", "vertexai":
		return "vertex"
	default:
		return "gemini"
	}
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	case "valkey":
		return "valkey"
	default:
		return "memory"
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "gemini-1.5-flash"
}
