package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SessionSecret keys the HMAC applied to session tokens before they
	// are stored. Required, no fallback.
	SessionSecret string
	SessionTTL    time.Duration

	GeminiAPIKey string
	GeminiModel  string
	SpeechAPIKey string

	SheetsWebhookURL string

	AllowedOrigins []string

	TracingEnabled bool
	OTLPEndpoint   string
}

// Load reads configuration from the environment. Secrets and external
// endpoints have no baked-in defaults: a missing one is a startup error.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		Port:             getEnvInt("PORT", 5000),
		DBURL:            buildDBURL(),
		RedisAddr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SessionTTL:       getEnvDuration("SESSION_TTL", 24*time.Hour),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		SpeechAPIKey:     os.Getenv("SPEECH_API_KEY"),
		SheetsWebhookURL: os.Getenv("SHEETS_WEBHOOK_URL"),
		AllowedOrigins:   splitAndTrim(getEnv("ALLOWED_ORIGINS", "http://localhost:5000")),
		TracingEnabled:   getEnv("TRACING_ENABLED", "false") == "true",
		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// the speech recognizer shares the Google project credential unless
	// one is set explicitly

	if cfg.SpeechAPIKey == "" {
		cfg.SpeechAPIKey = cfg.GeminiAPIKey
	}

	var missing []string

	for _, req := range []struct {
		key string
		val string
	}{
		{"SESSION_SECRET", cfg.SessionSecret},
		{"GEMINI_API_KEY", cfg.GeminiAPIKey},
		{"SHEETS_WEBHOOK_URL", cfg.SheetsWebhookURL},
	} {
		if req.val == "" {
			missing = append(missing, req.key)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "munmentor")
	pass := getEnv("DB_PASSWORD", "munmentor")
	name := getEnv("DB_NAME", "munmentor")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			return fallback
		}

		return d
	}
	return fallback
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
