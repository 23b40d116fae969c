package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 24*time.Hour, cfg.Auth.EmailVerificationLinkDuration)
	assert.Equal(t, time.Hour, cfg.Auth.PasswordResetLinkDuration)
	assert.Equal(t, 100, cfg.HTTP.RateLimitRequests)
	assert.Equal(t, 2*time.Minute, cfg.HTTP.RateLimitWindow)
	assert.Equal(t, HasherBcrypt, cfg.Auth.PasswordHasher)
	assert.Empty(t, cfg.HTTP.TrustedProxies)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("EMAIL_VERIFICATION_LINK_DURATION", "3600s")
	t.Setenv("PASSWORD_RESET_LINK_DURATION", "15m")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("PASSWORD_HASHER", "argon2")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.True(t, cfg.IsTest())
	assert.Equal(t, time.Hour, cfg.Auth.EmailVerificationLinkDuration)
	assert.Equal(t, 15*time.Minute, cfg.Auth.PasswordResetLinkDuration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowOrigins)
	assert.Equal(t, HasherArgon2, cfg.Auth.PasswordHasher)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.HTTP.TrustedProxies)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"UnknownDriver", map[string]string{"DB_DRIVER": "sqlite"}},
		{"PostgresWithoutHost", map[string]string{"DB_DRIVER": "postgres"}},
		{"UnknownMailDriver", map[string]string{"DB_DRIVER": "memory", "MAIL_DRIVER": "pigeon"}},
		{"UnknownHasher", map[string]string{"DB_DRIVER": "memory", "PASSWORD_HASHER": "md5"}},
		{"ZeroLinkDuration", map[string]string{"DB_DRIVER": "memory", "PASSWORD_RESET_LINK_DURATION": "0s"}},
		{"MailgunInProductionWithoutKey", map[string]string{"DB_DRIVER": "memory", "ENVIRONMENT": "production", "MAIL_DRIVER": "mailgun"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load("does-not-exist.env")
			assert.Error(t, err)
		})
	}
}
