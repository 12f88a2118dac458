// Command resetdb empties the catalog: disciplines with their courses and
// reviews, then users, then anything left behind. Stored images are removed too.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/SAP-F-2025/course-review-service/internal/config"
	"github.com/SAP-F-2025/course-review-service/internal/credentials"
	"github.com/SAP-F-2025/course-review-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
	"github.com/SAP-F-2025/course-review-service/pkg"
)

func main() {
	confirm := flag.Bool("yes", false, "confirm that every record should be deleted")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	if !*confirm {
		log.Fatal("refusing to reset without -yes")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, cache will not be cleared", "error", err)
		redisClient = nil
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db, RedisClient: redisClient})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	blobs, err := pkg.NewBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}
	publisher, err := pkg.NewEventPublisher(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	jwtManager := credentials.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	manager := services.NewServiceManager(services.ServiceDependencies{
		DB:        db,
		Repo:      repoManager.GetRepository(),
		Logger:    logger,
		Validator: validator.New(),
		Credentials: services.Credentials{
			Hasher:   credentials.NewBcryptHasher(0),
			Issuer:   jwtManager,
			Verifier: jwtManager,
		},
		Blobs:     blobs,
		Publisher: publisher,
	}, services.ServiceManagerConfig{})
	if err := manager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer manager.Shutdown(context.Background())

	summary, err := manager.Cascade().Reset(ctx)
	if err != nil {
		logger.Error("Reset failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Catalog reset",
		"disciplines", summary.Disciplines,
		"users", summary.Users,
		"courses", summary.Courses,
		"orphan_reviews", summary.OrphanReviews,
	)
}
