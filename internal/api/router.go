package api

import (
	"log/slog"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/webrana/adminmail-backend/internal/api/handlers"
	"github.com/webrana/adminmail-backend/internal/api/middleware"
	"github.com/webrana/adminmail-backend/internal/ingest"
	seclog "github.com/webrana/adminmail-backend/internal/logger"
	"github.com/webrana/adminmail-backend/internal/mailer"
	"github.com/webrana/adminmail-backend/internal/repository"
	"github.com/webrana/adminmail-backend/internal/storage"
	"github.com/webrana/adminmail-backend/internal/websocket"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB          *gorm.DB
	FileStorage storage.FileStorage
	Ingest      *ingest.Service
	Mailer      *mailer.Service
	Hub         *websocket.Hub
	Logger      *slog.Logger
	// Identity of the mailbox owner that inbound webhooks deliver to when
	// the provider does not say.
	InboundUser string
	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	RateLimit      int      // Requests per second (0 = use env default)
	RateBurst      int      // Burst size for rate limiter
	EnableAuth     bool     // Enable API key authentication
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Security events share the application log stream
	var secLog *seclog.SecurityLogger
	if cfg.Logger != nil {
		secLog = seclog.NewSecurityLoggerWithHandler(cfg.Logger.Handler())
	}

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS - Set environment variable if origins provided in config
	if len(cfg.AllowedOrigins) > 0 {
		os.Setenv("ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	}
	e.Use(middleware.SecureCORS())

	// 4. Rate limiting - use RateLimiterWithConfig if custom values provided
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(float64(cfg.RateLimit), cfg.RateBurst, secLog))
	} else {
		e.Use(middleware.RateLimiter(secLog))
	}

	// 5. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Initialize repositories
	emailRepo := repository.NewEmailRepository(cfg.DB)
	draftRepo := repository.NewDraftRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB, cfg.FileStorage)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	emailHandler := handlers.NewEmailHandler(emailRepo, cfg.Logger)
	draftHandler := handlers.NewDraftHandler(draftRepo)
	sendHandler := handlers.NewSendHandler(cfg.Mailer)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentRepo, cfg.FileStorage)
	webhookHandler := handlers.NewWebhookHandler(cfg.Ingest, cfg.InboundUser, cfg.Logger)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// Webhook routes authenticate with a shared provider secret, not a
	// user identity.
	webhooks := e.Group("/mail/webhooks")
	webhooks.Use(middleware.WebhookAuth(secLog))
	webhooks.POST("/:provider", webhookHandler.Receive)

	// Mail API routes
	mail := e.Group("/mail")

	// Apply API key authentication if enabled
	// Set API_KEY env var if provided in config
	if cfg.EnableAuth && cfg.APIKey != "" {
		os.Setenv("API_KEY", cfg.APIKey)
	}
	mail.Use(middleware.APIKeyAuth(secLog))
	mail.Use(middleware.UserContext())

	// Email routes
	emails := mail.Group("/emails")
	emails.GET("", emailHandler.List)
	emails.PATCH("", emailHandler.BulkUpdate)
	emails.GET("/:id", emailHandler.Get)
	emails.PATCH("/:id", emailHandler.Update)
	emails.DELETE("/:id", emailHandler.Delete)
	emails.GET("/:id/attachments", attachmentHandler.ListByEmail)

	// Draft routes
	drafts := mail.Group("/drafts")
	drafts.POST("", draftHandler.Create)
	drafts.GET("", draftHandler.List)
	drafts.PATCH("", draftHandler.BulkUpdate)
	drafts.GET("/:id", draftHandler.Get)
	drafts.PUT("/:id", draftHandler.Update)
	drafts.DELETE("/:id", draftHandler.Delete)

	// Attachment routes (standalone)
	attachments := mail.Group("/attachments")
	attachments.GET("/:id", attachmentHandler.Get)
	attachments.GET("/:id/download", attachmentHandler.Download)

	// Dispatch and aggregate routes
	mail.POST("/send", sendHandler.Send)
	mail.GET("/unread", emailHandler.Unread)

	// Live updates
	if cfg.Hub != nil {
		wsHandler := handlers.NewWSHandler(cfg.Hub, websocket.NewSecureUpgrader(secLog), cfg.Logger)
		mail.GET("/ws", wsHandler.Connect)
	}

	return e
}
