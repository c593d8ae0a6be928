package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_CSRF_SECRET", "s")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RememberTTL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.IdleTimeout)
	assert.Equal(t, "user", cfg.Auth.DefaultRole)
	assert.Equal(t, "portal_session", cfg.Auth.CookieName)
	assert.Equal(t, 8, cfg.Auth.Password.MinLength)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_CSRF_SECRET", "s")
	t.Setenv("AUTH_DEFAULT_ROLE", "Student")
	t.Setenv("AUTH_IDLE_TIMEOUT_MINUTES", "0")
	t.Setenv("AUTH_REQUIRE_APPROVAL", "false")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "student", cfg.Auth.DefaultRole)
	assert.Zero(t, cfg.Auth.IdleTimeout)
	assert.False(t, cfg.Auth.RequireApproval)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	_, err := Load()
	assert.Error(t, err)
}

func TestAuthConfigValidate(t *testing.T) {
	valid := AuthConfig{SessionTTL: time.Hour, RememberTTL: 24 * time.Hour, DefaultRole: "user", CSRFSecret: "s"}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*AuthConfig){
		"zero ttl":       func(c *AuthConfig) { c.SessionTTL = 0 },
		"short remember": func(c *AuthConfig) { c.RememberTTL = time.Minute },
		"negative idle":  func(c *AuthConfig) { c.IdleTimeout = -time.Second },
		"admin default":  func(c *AuthConfig) { c.DefaultRole = "admin" },
		"missing secret": func(c *AuthConfig) { c.CSRFSecret = " " },
	}
	for name, mutate := range cases {
		cfg := valid
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
