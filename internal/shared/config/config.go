package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	LLMProvider   string
	LLMModel      string
	LLMTimeout    time.Duration
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	GenerateCooldown time.Duration
	AnalyzeCooldown  time.Duration
	RateLimitBackend string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from .env files and environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; real env vars win.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}
	return FromViper(newViper())
}

// FromViper builds a Config from an already-populated viper instance.
func FromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:             v.GetString("PORT"),
		Env:              env,
		DatabaseURL:      dbURL,
		CORSAllowOrigin:  splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		LLMProvider:      normalizeProvider(v.GetString("LLM_PROVIDER")),
		LLMModel:         strings.TrimSpace(v.GetString("LLM_MODEL")),
		LLMTimeout:       positiveDuration(v.GetDuration("LLM_TIMEOUT"), 90*time.Second),
		GeminiAPIKey:     strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		OpenAIAPIKey:     strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIBaseURL:    strings.TrimSpace(v.GetString("OPENAI_BASE_URL")),
		GenerateCooldown: positiveDuration(v.GetDuration("GENERATE_COOLDOWN"), time.Minute),
		AnalyzeCooldown:  positiveDuration(v.GetDuration("ANALYZE_COOLDOWN"), time.Minute),
		RateLimitBackend: normalizeRateLimitBackend(v.GetString("RATE_LIMIT_BACKEND")),
		RedisAddr:        strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:4200")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_MODEL", "")
	v.SetDefault("LLM_TIMEOUT", "90s")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("GENERATE_COOLDOWN", "60s")
	v.SetDefault("ANALYZE_COOLDOWN", "60s")
	v.SetDefault("RATE_LIMIT_BACKEND", "memory")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	for _, key := range []string{"DATABASE_URL", "GEMINI_API_KEY", "OPENAI_API_KEY", "REDIS_ADDR", "REDIS_PASSWORD"} {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()
	return v
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
	case "openai", "openrouter":
		return "openai"
	case "none", "disabled", "off":
		return "none"
	default:
		return "gemini"
	}
}

func normalizeRateLimitBackend(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "redis") {
		return "redis"
	}
	return "memory"
}

func positiveDuration(value, def time.Duration) time.Duration {
	if value <= 0 {
		return def
	}
	return value
}
