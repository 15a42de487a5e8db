package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hireloop/interview-service/internal/config"
	httpserver "github.com/hireloop/interview-service/internal/http"
	"github.com/hireloop/interview-service/internal/insights"
	"github.com/hireloop/interview-service/internal/interview"
	"github.com/hireloop/interview-service/internal/mirror"
	"github.com/hireloop/interview-service/internal/notification"
	"github.com/hireloop/interview-service/internal/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	sessionsRepo := repository.NewSessionsRepository(db)
	candidatesRepo := repository.NewCandidatesRepository(db)

	// Initialize session mirror if configured
	events := interview.NoopSink()
	if cfg.HasMirror() {
		publisher, err := mirror.NewPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("failed to connect to mirror broker", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		events = publisher
		logger.Info("session mirror enabled")
	}

	// Initialize email service if configured
	var emailService *notification.EmailService
	if cfg.HasSMTP() {
		emailService = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			BaseURL:  cfg.AppBaseURL,
		})
		logger.Info("email service enabled")
	}

	// Initialize services
	clock := interview.SystemClock()
	issuer := interview.NewIssuer(sessionsRepo, clock, interview.NewToken, events)
	validator := interview.NewValidator(sessionsRepo, candidatesRepo, clock, logger, events)
	lifecycle := interview.NewLifecycle(sessionsRepo, clock, logger, events)

	var sender interview.InviteSender
	if emailService != nil {
		sender = emailService
	}
	scheduler := interview.NewScheduler(issuer, sessionsRepo, candidatesRepo, sender, clock, logger)

	insightsCache := insights.NewCache(cfg.InsightsCacheSize, cfg.InsightsCacheTTL)
	insightsService := insights.NewService(sessionsRepo, insightsCache)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:     logger,
		Validator:  validator,
		Issuer:     issuer,
		Lifecycle:  lifecycle,
		Scheduler:  scheduler,
		Store:      sessionsRepo,
		Candidates: candidatesRepo,
		Sender:     sender,
		Insights:   insightsService,
		Clock:      clock,

		AdminJWTSecret: []byte(cfg.AdminJWTSecret),
		JWTIssuer:      cfg.JWTIssuer,

		RateLimitEnabled:          cfg.RateLimitEnabled,
		ValidateRequestsPerMinute: cfg.ValidateRequestsPerMinute,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
