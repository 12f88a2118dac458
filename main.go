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

	"github.com/SAP-F-2025/course-review-service/internal/config"
	"github.com/SAP-F-2025/course-review-service/internal/credentials"
	"github.com/SAP-F-2025/course-review-service/internal/handlers"
	"github.com/SAP-F-2025/course-review-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
	"github.com/SAP-F-2025/course-review-service/pkg"
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
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis, caching disabled: %v", err)
		redisClient = nil
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	// Credentials: local JWTs are always issued, Casdoor can take over verification
	jwtManager := credentials.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	creds := services.Credentials{
		Hasher:   credentials.NewBcryptHasher(0),
		Issuer:   jwtManager,
		Verifier: jwtManager,
	}
	if cfg.Auth.Provider == config.AuthProviderCasdoor {
		creds.Verifier = credentials.NewCasdoorVerifier(cfg.Casdoor, repo.User())
	}

	blobs, err := pkg.NewBlobStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	publisher, err := pkg.NewEventPublisher(cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceDependencies{
		DB:          db,
		Repo:        repo,
		Logger:      slogLogger,
		Validator:   validator.New(),
		Credentials: creds,
		Blobs:       blobs,
		Publisher:   publisher,
	}, services.ServiceManagerConfig{
		User: services.UserServiceConfig{ResetURL: cfg.ResetURL},
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	handlers.SetupMiddleware(router, logger, handlers.MiddlewareConfig{
		AllowedOrigins:  cfg.AllowedOrigins,
		MaxUploadSizeMB: cfg.MaxUploadSizeMB,
	})
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "auth_provider", cfg.Auth.Provider, "blob_driver", cfg.Blob.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// closes the publisher, the database and redis
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	if closer, ok := blobs.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("Failed to close blob store: %v", err)
		}
	}

	logger.Info("Server exited")
}
