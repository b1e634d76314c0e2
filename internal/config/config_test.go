package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "The Busy Preacher", cfg.SendGridFromName)
	assert.Equal(t, 3, cfg.SermonSearchLimit)
	assert.InDelta(t, 0.35, cfg.SermonSearchThreshold, 0.001)
	assert.Equal(t, 10*time.Second, cfg.SermonSearchTimeout)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.Empty(t, cfg.SermonSearchURL)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PASTOR_EMAIL", "pastor@example.org")
	t.Setenv("SERMON_SEARCH_URL", "https://sermons.example.org")
	t.Setenv("SERMON_SEARCH_LIMIT", "5")
	t.Setenv("SERMON_SEARCH_THRESHOLD", "0.5")
	t.Setenv("GENERATION_TIMEOUT", "45s")
	t.Setenv("RATE_LIMIT_PER_SECOND", "4.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "pastor@example.org", cfg.PastorEmail)
	assert.Equal(t, "https://sermons.example.org", cfg.SermonSearchURL)
	assert.Equal(t, 5, cfg.SermonSearchLimit)
	assert.InDelta(t, 0.5, cfg.SermonSearchThreshold, 0.001)
	assert.Equal(t, 45*time.Second, cfg.GenerationTimeout)
	assert.InDelta(t, 4.5, cfg.RateLimitPerSecond, 0.001)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.CORSAllowedOrigins)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERMON_SEARCH_LIMIT", "not-a-number")
	t.Setenv("GENERATION_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 3, cfg.SermonSearchLimit)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
}
