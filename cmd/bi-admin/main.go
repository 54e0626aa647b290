package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bi-admin/internal/api"
	"bi-admin/internal/api/handlers"
	"bi-admin/internal/repository"
	"bi-admin/internal/service"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/cache"
	"bi-admin/pkg/config"
	"bi-admin/pkg/logger"
	"bi-admin/pkg/postgres"

	"go.uber.org/zap"
)

// @title BI Admin API
// @version 1.0
// @description Knowledge pipeline backend of the BI assistant: documentation parsing, question triage and answer feedback

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting BI admin service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	contextCache, closeCache, err := cache.New(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, context cache disabled", zap.Error(err))
		contextCache, closeCache = cache.Noop{}, func() error { return nil }
	}
	defer closeCache()

	// Initialize repositories
	contextRepo := repository.NewKnowledgeContextRepository(db, appLogger)
	questionRepo := repository.NewQuestionRepository(db, appLogger)
	feedbackRepo := repository.NewFeedbackRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)

	// Initialize services
	knowledgeService := service.NewKnowledgeService(contextRepo, contextCache, appLogger)
	triageService := service.NewTriageService(service.QuestionScope(questionRepo), cfg.Triage, appLogger)
	feedbackService := service.NewFeedbackService(feedbackRepo, appLogger)

	// Initialize handlers
	h := api.Handlers{
		Knowledge: handlers.NewKnowledgeHandler(knowledgeService, appLogger),
		Triage:    handlers.NewTriageHandler(triageService, appLogger),
		Feedback:  handlers.NewFeedbackHandler(feedbackService, appLogger),
		Health: handlers.NewHealthHandler(map[string]handlers.Check{
			"postgres": db.Ping,
		}, appLogger),
	}

	app := api.SetupRouter(h, jwtManager, cfg.Server, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
