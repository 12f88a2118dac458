package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/blobstore"
	"github.com/SAP-F-2025/course-review-service/internal/events"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

// ServiceDependencies groups the collaborators shared by every service
type ServiceDependencies struct {
	DB          *gorm.DB
	Repo        repositories.Repository
	Logger      *slog.Logger
	Validator   *validator.Validator
	Credentials Credentials
	Blobs       blobstore.Store
	Publisher   events.EventPublisher
	Notifier    events.Notifier
}

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	User UserServiceConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig
	logger *slog.Logger

	// Service instances
	aggregator          *RatingAggregator
	cascade             *CascadeManager
	userService         UserService
	disciplineService   DisciplineService
	courseService       CourseService
	reviewService       ReviewService
	importExportService ImportExportService
	dashboardService    DashboardService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Notifier == nil && deps.Publisher != nil {
		deps.Notifier = events.NewEventNotifier(deps.Publisher, deps.Logger)
	}
	return &serviceManager{
		deps:   deps,
		config: config,
		logger: deps.Logger,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() error {
	d := sm.deps
	if d.DB == nil || d.Repo == nil || d.Validator == nil {
		return fmt.Errorf("database, repository and validator are required")
	}

	sm.aggregator = NewRatingAggregator(d.Repo, d.Logger)
	sm.cascade = NewCascadeManager(d.Repo, d.Blobs, sm.aggregator, d.Publisher, d.Logger)

	sm.userService = NewUserService(d.Repo, d.DB, d.Logger, d.Validator, d.Credentials, d.Blobs, d.Notifier, sm.cascade, sm.config.User)
	sm.logger.Info("User service initialized")

	sm.disciplineService = NewDisciplineService(d.Repo, d.DB, d.Logger, d.Validator, d.Blobs, sm.cascade)
	sm.logger.Info("Discipline service initialized")

	sm.courseService = NewCourseService(d.Repo, d.DB, d.Logger, d.Validator, sm.cascade)
	sm.logger.Info("Course service initialized")

	sm.reviewService = NewReviewService(d.Repo, d.DB, d.Logger, d.Validator, sm.aggregator, d.Publisher)
	sm.logger.Info("Review service initialized")

	sm.importExportService = NewImportExportService(d.Repo, d.DB, d.Logger, d.Validator)
	sm.logger.Info("ImportExport service initialized")

	sm.dashboardService = NewDashboardService(d.Repo, d.DB, d.Logger)
	sm.logger.Info("Dashboard service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Discipline() DisciplineService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.disciplineService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.courseService
}

func (sm *serviceManager) Review() ReviewService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.reviewService
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.importExportService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) Cascade() *CascadeManager {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.cascade
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if repoManager, ok := sm.deps.Repo.(repositories.RepositoryManager); ok {
		if err := repoManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("repository health check failed: %w", err)
		}
		return nil
	}
	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if repoManager, ok := sm.deps.Repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	} else if err := sm.deps.Repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}
