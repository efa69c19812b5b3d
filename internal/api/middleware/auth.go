// Package middleware provides HTTP middleware for the mail API.
package middleware

import (
	"crypto/subtle"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	seclog "github.com/webrana/adminmail-backend/internal/logger"
)

// APIKeyAuth validates API key from Authorization header.
// Uses constant-time comparison to prevent timing attacks.
func APIKeyAuth(secLog *seclog.SecurityLogger) echo.MiddlewareFunc {
	validAPIKey := os.Getenv("API_KEY")
	if validAPIKey == "" && secLog != nil {
		secLog.Warn("API_KEY not set - API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			// Skip auth for health endpoints
			if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/ready") {
				return next(c)
			}

			// Skip if API_KEY not configured (development mode)
			if validAPIKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if secLog != nil {
					secLog.AuthFailure(c.RealIP(), path, "missing authorization header")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing authorization header",
					"code":  "UNAUTHORIZED",
				})
			}

			// Extract token from "Bearer <token>" format
			token := strings.TrimPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)

			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(validAPIKey)) != 1 {
				if secLog != nil {
					secLog.AuthFailure(c.RealIP(), path, "invalid API key")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "invalid API key",
					"code":  "UNAUTHORIZED",
				})
			}

			return next(c)
		}
	}
}

// WebhookAuth validates the shared secret mail providers attach to webhook
// deliveries, via the X-Webhook-Secret header. When no secret is configured
// the check is disabled (development mode).
func WebhookAuth(secLog *seclog.SecurityLogger) echo.MiddlewareFunc {
	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" && secLog != nil {
		secLog.Warn("WEBHOOK_SECRET not set - webhook endpoint is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			provided := c.Request().Header.Get("X-Webhook-Secret")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				if secLog != nil {
					secLog.AuthFailure(c.RealIP(), c.Path(), "invalid webhook secret")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "invalid webhook secret",
					"code":  "UNAUTHORIZED",
				})
			}

			return next(c)
		}
	}
}
