package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                     "8080",
		Env:                      "development",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		DBSSLMode:                "disable",
		DBConnMaxLifetimeMinutes: 5,
		FeedCacheTTLSeconds:      300,
		PostCacheTTLSeconds:      600,
		NotificationWorkers:      2,
		NotificationQueueSize:    16,
		AuthProvider:             "local",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRejectsDefaultSecretInProduction(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.DBSSLMode = "require"
	c.JWTSecret = defaultJWTSecret

	assert.ErrorContains(t, c.Validate(), "JWT_SECRET")
}

func TestConfig_ValidateAuthProvider(t *testing.T) {
	c := validConfig()
	c.AuthProvider = "gotrue"
	assert.ErrorContains(t, c.Validate(), "AUTH_URL")

	c.AuthURL = "https://auth.example.com"
	assert.NoError(t, c.Validate())

	c.AuthProvider = "ldap"
	assert.ErrorContains(t, c.Validate(), "unsupported AUTH_PROVIDER")
}

func TestConfig_ValidateWorkerSettings(t *testing.T) {
	c := validConfig()
	c.NotificationWorkers = 0
	assert.Error(t, c.Validate())

	c = validConfig()
	c.NotificationQueueSize = 0
	assert.Error(t, c.Validate())
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("FEED_CACHE_TTL_SECONDS", "120")
	t.Setenv("AUTH_PROVIDER", " Local ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "local", c.AuthProvider)
	assert.Equal(t, 2*time.Minute, c.FeedCacheTTL())
	assert.Equal(t, "post-images", c.S3Bucket)
	assert.True(t, c.IsDevLike())
	assert.False(t, c.IsProduction())
}
