package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string
	DatabaseURL   string

	// Pastoral escalation delivery
	PastorEmail       string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// Sermon search service (empty base URL disables retrieval)
	SermonSearchURL       string
	SermonSearchLimit     int
	SermonSearchThreshold float64
	SermonSearchTimeout   time.Duration

	// Generation providers
	OpenAIAPIKey      string
	OpenAIModel       string
	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration

	// Session transcripts (empty addr disables server-side history)
	RedisAddr     string
	RedisPassword string

	// HTTP surface
	RateLimitPerSecond float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		PastorEmail:       getEnv("PASTOR_EMAIL", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "The Busy Preacher"),

		SermonSearchURL:       getEnv("SERMON_SEARCH_URL", ""),
		SermonSearchLimit:     getEnvAsInt("SERMON_SEARCH_LIMIT", 3),
		SermonSearchThreshold: getEnvAsFloat("SERMON_SEARCH_THRESHOLD", 0.35),
		SermonSearchTimeout:   getEnvAsDuration("SERMON_SEARCH_TIMEOUT", 10*time.Second),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
