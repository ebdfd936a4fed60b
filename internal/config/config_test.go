package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AppPort:              "5000",
		DatabaseDSN:          "postgres://localhost/hirehub",
		RedisAddr:            "localhost:6379",
		SessionBackend:       SessionBackendRedis,
		SessionSecret:        strings.Repeat("k", 32),
		SessionTTL:           time.Hour,
		SessionCookieName:    "hirehub.sid",
		SessionPurgeInterval: time.Minute,
		BcryptCost:           12,
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("APP_PORT", "")
		t.Setenv("PORT", "")
		t.Setenv("SESSION_BACKEND", "")
		t.Setenv("BCRYPT_COST", "")
		t.Setenv("SESSION_TTL_HOURS", "")
		t.Setenv("ALLOW_ADMIN_SIGNUP", "")

		cfg := Load()
		assert.Equal(t, "5000", cfg.AppPort)
		assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.True(t, cfg.AllowAdminSignup)
	})

	t.Run("PORT is honoured when APP_PORT is unset", func(t *testing.T) {
		t.Setenv("APP_PORT", "")
		t.Setenv("PORT", "8081")

		assert.Equal(t, "8081", Load().AppPort)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("APP_PORT", "9000")
		t.Setenv("SESSION_BACKEND", "Postgres")
		t.Setenv("SESSION_TTL_HOURS", "2")
		t.Setenv("ALLOW_ADMIN_SIGNUP", "false")
		t.Setenv("REDIS_DB", "not-a-number")

		cfg := Load()
		assert.Equal(t, "9000", cfg.AppPort)
		assert.Equal(t, SessionBackendPostgres, cfg.SessionBackend)
		assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
		assert.False(t, cfg.AllowAdminSignup)
		assert.Equal(t, 0, cfg.RedisDB)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.SessionSecret = "secret" },
			wantErr: "SESSION_SECRET",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.SessionBackend = "memory" },
			wantErr: "unknown SESSION_BACKEND",
		},
		{
			name:    "redis backend without address",
			mutate:  func(c *Config) { c.RedisAddr = "" },
			wantErr: "REDIS_ADDR",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.BcryptCost = 40 },
			wantErr: "BCRYPT_COST",
		},
		{
			name: "postgres backend needs no redis",
			mutate: func(c *Config) {
				c.SessionBackend = SessionBackendPostgres
				c.RedisAddr = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
