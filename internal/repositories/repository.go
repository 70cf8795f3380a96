package repositories

import "context"

// Repository aggregates all entity repositories behind one interface
type Repository interface {
	User() UserRepository
	Session() SessionRepository
	Test() TestRepository
	Like() LikeRepository
	Result() ResultRepository
	Category() CategoryRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
