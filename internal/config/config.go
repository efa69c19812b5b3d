package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server ports
	APIPort  int
	SMTPPort int

	// Inbound ingestion. InboundUser is the console owner's id: webhook
	// deliveries without an explicit user and all SMTP deliveries land in
	// this user's inbox.
	SMTPEnabled bool
	InboundUser string

	// Outbound dispatch
	SendProvider    string // "http" or "smtp"
	SendAPIURL      string
	SendAPIKey      string
	SendSMTPAddr    string
	SendSMTPUser    string
	SendSMTPPass    string
	SendFromAddress string
	SendFromName    string
	ProviderTimeout time.Duration

	// Storage
	AttachmentStoragePath string

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.APIPort, err = intEnv("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 2525); err != nil {
		return nil, err
	}

	// SMTP_ENABLED (default: false; requires SMTP_INBOUND_USER)
	if enabled := os.Getenv("SMTP_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("SMTP_ENABLED must be a valid boolean: %w", err)
		}
		cfg.SMTPEnabled = v
	}
	cfg.InboundUser = os.Getenv("INBOUND_USER")

	// Dispatch provider (default: http)
	cfg.SendProvider = os.Getenv("SEND_PROVIDER")
	if cfg.SendProvider == "" {
		cfg.SendProvider = "http"
	}
	cfg.SendAPIURL = os.Getenv("SEND_API_URL")
	cfg.SendAPIKey = os.Getenv("SEND_API_KEY")
	cfg.SendSMTPAddr = os.Getenv("SEND_SMTP_ADDR")
	cfg.SendSMTPUser = os.Getenv("SEND_SMTP_USER")
	cfg.SendSMTPPass = os.Getenv("SEND_SMTP_PASS")
	cfg.SendFromAddress = os.Getenv("SEND_FROM_ADDRESS")
	cfg.SendFromName = os.Getenv("SEND_FROM_NAME")

	timeoutSecs, err := intEnv("PROVIDER_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.ProviderTimeout = time.Duration(timeoutSecs) * time.Second

	// ATTACHMENT_STORAGE_PATH (default: ./attachments)
	cfg.AttachmentStoragePath = os.Getenv("ATTACHMENT_STORAGE_PATH")
	if cfg.AttachmentStoragePath == "" {
		cfg.AttachmentStoragePath = "./attachments"
	}

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 20
	}

	return cfg, nil
}

// intEnv reads an integer environment variable with a default
func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
	}
	return v, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.SMTPEnabled && c.InboundUser == "" {
		return fmt.Errorf("INBOUND_USER is required when SMTP_ENABLED is set")
	}
	switch c.SendProvider {
	case "http":
		if c.SendAPIURL == "" {
			return fmt.Errorf("SEND_API_URL is required for the http provider")
		}
	case "smtp":
		if c.SendSMTPAddr == "" {
			return fmt.Errorf("SEND_SMTP_ADDR is required for the smtp provider")
		}
	default:
		return fmt.Errorf("SEND_PROVIDER must be http or smtp, got %q", c.SendProvider)
	}
	if c.SendFromAddress == "" {
		return fmt.Errorf("SEND_FROM_ADDRESS cannot be empty")
	}
	if c.AttachmentStoragePath == "" {
		return fmt.Errorf("AttachmentStoragePath cannot be empty")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	// Check for sslmode=disable in database URL
	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Bool("smtp_enabled", c.SMTPEnabled),
		slog.Int("smtp_port", c.SMTPPort),
		slog.String("send_provider", c.SendProvider),
		slog.Duration("provider_timeout", c.ProviderTimeout),
		slog.String("storage_path", c.AttachmentStoragePath),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("send_api_key_set", c.SendAPIKey != ""),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
