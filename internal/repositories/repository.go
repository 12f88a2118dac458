package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates the entity repositories of the catalog
type Repository interface {
	User() UserRepository
	Discipline() DisciplineRepository
	Course() CourseRepository
	Review() ReviewRepository
	Dashboard() DashboardRepository

	// Transaction support, fn receives the transaction handle to pass to repository calls
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Health check
	Ping(ctx context.Context) error

	// ClearCache drops cached reads, used after bulk resets
	ClearCache(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
