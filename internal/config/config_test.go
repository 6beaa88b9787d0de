package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PERSONA_PACING_INTERVAL_MS", "")
	t.Setenv("LLM_MAX_TOKENS", "")

	cfg := Load()

	assert.Equal(t, 1500*time.Millisecond, cfg.Persona.PacingInterval)
	assert.Equal(t, 5, cfg.Persona.ContextWindow)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, "gpt-4o-mini-search-preview", cfg.Search.Model)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PERSONA_PACING_INTERVAL_MS", "250")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("GO_ENV", "production")
	t.Setenv("PERSONA_LEO_API_KEY", "leo-key")

	cfg := Load()

	assert.Equal(t, 250*time.Millisecond, cfg.Persona.PacingInterval)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "leo-key", cfg.Persona.LeoAPIKey)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 42, getEnvAsInt("SOME_INT", 42))
}
