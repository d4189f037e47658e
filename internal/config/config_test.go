package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nursery-shop", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "he", cfg.App.DefaultLanguage)
	assert.Equal(t, "X-Cart-Session", cfg.Cart.SessionHeader)
	assert.Equal(t, "static", cfg.Promotions.Source)
	assert.False(t, cfg.MQ.Enabled)
	assert.Equal(t, 30*24*time.Hour, cfg.Cart.TTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_DEFAULT_LANGUAGE", "ru")
	t.Setenv("CACHE_TYPE", "memory")
	t.Setenv("CART_TTL", "48h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example, https://admin.example")
	t.Setenv("MQ_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "ru", cfg.App.DefaultLanguage)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.MQ.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad port":            {"APP_PORT": "abc"},
		"port out of range":   {"APP_PORT": "70000"},
		"bad env":             {"APP_ENV": "staging"},
		"bad language":        {"APP_DEFAULT_LANGUAGE": "fr"},
		"bad duration":        {"CACHE_TTL": "ten minutes"},
		"prod without secret": {"APP_ENV": "prod"},
		"bad promotions":      {"PROMOTIONS_SOURCE": "api"},
		"bad limiter window":  {"LIMITER_WINDOW": "10ms"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
