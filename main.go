package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/usv-fiesc/exam-scheduler/internal/auth"
	"github.com/usv-fiesc/exam-scheduler/internal/cache"
	"github.com/usv-fiesc/exam-scheduler/internal/config"
	"github.com/usv-fiesc/exam-scheduler/internal/events"
	"github.com/usv-fiesc/exam-scheduler/internal/handlers"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories/postgres"
	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
	"github.com/usv-fiesc/exam-scheduler/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Initialize repositories
	repo := postgres.NewPostgresRepository(db)

	// Initialize cache (degrades to pass-through when Redis is absent)
	cacheManager := cache.NewCacheManager(redisClient)

	// Initialize event publisher (mock mode when no brokers are configured)
	var publisher events.EventPublisher
	if kafkaPublisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, slogLogger); err != nil {
		log.Fatalf("Failed to initialize Kafka publisher: %v", err)
	} else if kafkaPublisher != nil {
		publisher = kafkaPublisher
	} else {
		logger.Warn("No Kafka brokers configured, events will be discarded")
		publisher = events.NoopPublisher{}
	}

	// Initialize token verifier
	verifier := auth.NewTokenVerifier(auth.Config{
		PrimarySecret:    cfg.Auth.PrimarySecret,
		ExternalSecret:   cfg.Auth.ExternalSecret,
		ExternalAudience: cfg.Auth.ExternalAudience,
		TokenTTL:         cfg.Auth.TokenTTL,
	})

	// Initialize validator
	businessValidator := validator.NewBusinessValidator()

	// Initialize services
	serviceManager := services.NewServiceManager(
		repo,
		verifier,
		slogLogger,
		businessValidator,
		cacheManager,
		publisher,
		services.DefaultServiceManagerConfig(),
	)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, verifier, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Shutdown services (closes the publisher and database)
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
