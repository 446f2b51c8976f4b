package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "vrt-feedback", cfg.MongoDatabase)
	assert.Equal(t, "surveys", cfg.SurveyCollection)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 2*time.Minute, cfg.EmailGrace)
	assert.Equal(t, 25, cfg.EmailBatchLimit)
	assert.False(t, cfg.LegacyValidation)

	// Secrets have no defaults.
	assert.Empty(t, cfg.CronSecret)
	assert.Empty(t, cfg.SMTPPassword)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SURVEY_LEGACY_VALIDATION", "true")
	t.Setenv("CRON_SECRET", "sweep-secret")
	t.Setenv("EMAIL_GRACE_PERIOD", "30s")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.LegacyValidation)
	assert.Equal(t, "sweep-secret", cfg.CronSecret)
	assert.Equal(t, 30*time.Second, cfg.EmailGrace)
}
