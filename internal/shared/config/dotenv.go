package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// loadEnvFiles loads KEY=VALUE pairs from the given files if they exist.
// Variables already present in the environment win; errors are ignored.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

// fileConfig mirrors the environment variables for YAML config files.
type fileConfig struct {
	Port           string   `yaml:"port"`
	Env            string   `yaml:"env"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	LLM            struct {
		Provider       string `yaml:"provider"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		VertexProject  string `yaml:"vertex_project"`
		VertexLocation string `yaml:"vertex_location"`
	} `yaml:"llm"`
	RateLimit struct {
		Requests      int    `yaml:"requests"`
		WindowSeconds int    `yaml:"window_seconds"`
		Backend       string `yaml:"backend"`
		RedisAddr     string `yaml:"redis_addr"`
	} `yaml:"rate_limit"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Dir    string `yaml:"dir"`
	} `yaml:"logger"`
	WorkerPoolSize int   `yaml:"worker_pool_size"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// applyFile reads a YAML config file and exports its values as environment
// defaults, so explicit environment variables keep precedence.
func applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	origins := strings.Join(fc.AllowedOrigins, ",")

	defaults := map[string]string{
		"PORT":                fc.Port,
		"ENV":                 fc.Env,
		"ALLOWED_ORIGINS":     origins,
		"TRUSTED_PROXIES":     strings.Join(fc.TrustedProxies, ","),
		"LLM_PROVIDER":        fc.LLM.Provider,
		"LLM_MODEL":           fc.LLM.Model,
		"LLM_TIMEOUT_SECONDS": itoa(fc.LLM.TimeoutSeconds),
		"VERTEX_PROJECT":      fc.LLM.VertexProject,
		"VERTEX_LOCATION":     fc.LLM.VertexLocation,
		"RATE_LIMIT_REQUESTS": itoa(fc.RateLimit.Requests),
		"RATE_LIMIT_WINDOW":   itoa(fc.RateLimit.WindowSeconds),
		"RATE_LIMIT_BACKEND":  fc.RateLimit.Backend,
		"REDIS_ADDR":          fc.RateLimit.RedisAddr,
		"LOG_LEVEL":           fc.Logger.Level,
		"LOG_FORMAT":          fc.Logger.Format,
		"LOG_DIR":             fc.Logger.Dir,
		"WORKER_POOL_SIZE":    itoa(fc.WorkerPoolSize),
		"MAX_UPLOAD_BYTES":    strconv.FormatInt(fc.MaxUploadBytes, 10),
	}
	for key, val := range defaults {
		if val == "" || val == "0" {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return err
		}
	}
	return nil
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
