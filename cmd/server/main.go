package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/webrana/adminmail-backend/internal/api"
	"github.com/webrana/adminmail-backend/internal/config"
	"github.com/webrana/adminmail-backend/internal/database"
	"github.com/webrana/adminmail-backend/internal/ingest"
	"github.com/webrana/adminmail-backend/internal/mailer"
	"github.com/webrana/adminmail-backend/internal/repository"
	"github.com/webrana/adminmail-backend/internal/smtp"
	"github.com/webrana/adminmail-backend/internal/storage"
	"github.com/webrana/adminmail-backend/internal/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting adminmail backend")
	cfg.LogConfig(logger)

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// File storage for attachments
	fileStorage, err := storage.NewLocalStorage(cfg.AttachmentStoragePath)
	if err != nil {
		logger.Error("failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	// WebSocket hub for live mailbox updates
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Repositories and services
	emailRepo := repository.NewEmailRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db, fileStorage)

	ingestSvc := ingest.NewService(&ingest.Config{
		EmailRepo:      emailRepo,
		AttachmentRepo: attachmentRepo,
		FileStorage:    fileStorage,
		Notifier:       hub,
		Logger:         logger,
	})

	mailerSvc := mailer.NewService(&mailer.Config{
		Provider:    buildProvider(cfg),
		EmailRepo:   emailRepo,
		DraftRepo:   draftRepo,
		FromAddress: cfg.SendFromAddress,
		FromName:    cfg.SendFromName,
		Timeout:     cfg.ProviderTimeout,
		Logger:      logger,
	})

	// HTTP server
	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		FileStorage:    fileStorage,
		Ingest:         ingestSvc,
		Mailer:         mailerSvc,
		Hub:            hub,
		Logger:         logger,
		InboundUser:    cfg.InboundUser,
		APIKey:         cfg.APIKey,
		AllowedOrigins: splitOrigins(cfg.AllowedOrigins),
		RateLimit:      int(cfg.RateLimitRequests),
		RateBurst:      cfg.RateLimitBurst,
		EnableAuth:     cfg.APIKey != "",
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		logger.Info("HTTP server listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Optional inbound SMTP server
	var smtpServer interface{ Close() error }
	if cfg.SMTPEnabled {
		backend := smtp.NewBackend(&smtp.BackendConfig{
			Ingest:      ingestSvc,
			InboundUser: cfg.InboundUser,
			Logger:      logger,
		})
		serverCfg := smtp.LoadServerConfigFromEnv()
		serverCfg.Addr = fmt.Sprintf(":%d", cfg.SMTPPort)
		server := smtp.NewSecureServer(backend, serverCfg)
		smtpServer = server

		go func() {
			logger.Info("SMTP server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil {
				logger.Error("SMTP server stopped", "error", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if smtpServer != nil {
		if err := smtpServer.Close(); err != nil {
			logger.Error("SMTP shutdown error", "error", err)
		}
	}

	logger.Info("server stopped")
}

// buildProvider selects the outbound delivery transport from configuration
func buildProvider(cfg *config.Config) mailer.Provider {
	switch cfg.SendProvider {
	case "smtp":
		return mailer.NewSMTPProvider(cfg.SendSMTPAddr, "localhost", cfg.SendSMTPUser, cfg.SendSMTPPass)
	default:
		return mailer.NewHTTPProvider(cfg.SendAPIURL, cfg.SendAPIKey, nil)
	}
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
