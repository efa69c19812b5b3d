package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.False(t, cfg.SMTPEnabled)
	assert.Equal(t, "http", cfg.SendProvider)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "./attachments", cfg.AttachmentStoragePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 10.0, cfg.RateLimitRequests)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoad_DispatchConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SEND_PROVIDER", "smtp")
	t.Setenv("SEND_SMTP_ADDR", "smtp.example.com:587")
	t.Setenv("SEND_FROM_ADDRESS", "me@example.com")
	t.Setenv("SEND_FROM_NAME", "Me")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "smtp", cfg.SendProvider)
	assert.Equal(t, "smtp.example.com:587", cfg.SendSMTPAddr)
	assert.Equal(t, "me@example.com", cfg.SendFromAddress)
	assert.Equal(t, "Me", cfg.SendFromName)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
}

func TestLoad_InvalidSMTPEnabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SMTP_ENABLED", "invalid")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_ENABLED must be a valid boolean")
}

func TestLoad_SecurityConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("API_KEY", "my-secret-key")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000,http://example.com")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("RATE_LIMIT_REQUESTS", "20")
	t.Setenv("RATE_LIMIT_BURST", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "my-secret-key", cfg.APIKey)
	assert.Equal(t, "http://localhost:3000,http://example.com", cfg.AllowedOrigins)
	assert.Equal(t, "staging", cfg.AppEnv)
	assert.Equal(t, 20.0, cfg.RateLimitRequests)
	assert.Equal(t, 50, cfg.RateLimitBurst)
}

func validTestConfig() *Config {
	return &Config{
		DatabaseURL:           "postgres://localhost/test",
		APIPort:               8080,
		SMTPPort:              2525,
		SendProvider:          "http",
		SendAPIURL:            "https://api.resend.com",
		SendFromAddress:       "me@example.com",
		AttachmentStoragePath: "./attachments",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validTestConfig().Validate())
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.APIPort = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "APIPort")
}

func TestValidate_SMTPRequiresInboundUser(t *testing.T) {
	cfg := validTestConfig()
	cfg.SMTPEnabled = true
	cfg.InboundUser = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "INBOUND_USER is required")
}

func TestValidate_HTTPProviderRequiresURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.SendAPIURL = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SEND_API_URL is required")
}

func TestValidate_SMTPProviderRequiresAddr(t *testing.T) {
	cfg := validTestConfig()
	cfg.SendProvider = "smtp"
	cfg.SendSMTPAddr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SEND_SMTP_ADDR is required")
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validTestConfig()
	cfg.SendProvider = "carrier-pigeon"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SEND_PROVIDER must be http or smtp")
}

func TestValidateProduction_RequiresAPIKey(t *testing.T) {
	cfg := validTestConfig()
	cfg.AppEnv = "production"
	cfg.AllowedOrigins = "http://example.com"
	cfg.APIKey = ""

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY is required")
}

func TestValidateProduction_RequiresAllowedOrigins(t *testing.T) {
	cfg := validTestConfig()
	cfg.AppEnv = "production"
	cfg.APIKey = "test-key"
	cfg.AllowedOrigins = ""

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOWED_ORIGINS is required")
}

func TestValidateProduction_NoWildcardOrigins(t *testing.T) {
	cfg := validTestConfig()
	cfg.AppEnv = "production"
	cfg.APIKey = "test-key"
	cfg.AllowedOrigins = "*"

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard")
}

func TestValidateProduction_NoSSLDisable(t *testing.T) {
	cfg := validTestConfig()
	cfg.AppEnv = "production"
	cfg.APIKey = "test-key"
	cfg.AllowedOrigins = "http://example.com"
	cfg.DatabaseURL = "postgres://localhost/test?sslmode=disable"

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sslmode=disable")
}

func TestLoadWithValidation_FailFast(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test?sslmode=disable")
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_KEY", "test-key")
	t.Setenv("ALLOWED_ORIGINS", "http://example.com")
	t.Setenv("SEND_API_URL", "https://api.resend.com")
	t.Setenv("SEND_FROM_ADDRESS", "me@example.com")

	_, err := LoadWithValidation()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sslmode=disable")
}

func TestLoadWithValidation_DevelopmentAllowsInsecure(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test?sslmode=disable")
	t.Setenv("APP_ENV", "development")
	t.Setenv("SEND_API_URL", "https://api.resend.com")
	t.Setenv("SEND_FROM_ADDRESS", "me@example.com")

	cfg, err := LoadWithValidation()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
}
