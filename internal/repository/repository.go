package repository

import (
	"context"

	"zhamesh/internal/domain"
)

// DefaultLimit caps list queries that do not set one
const DefaultLimit = 100

// ObservationFilter narrows ListObservations
type ObservationFilter struct {
	// Limit is the maximum number of rows, newest first. Zero means DefaultLimit.
	Limit int
	// Address matches either side of the observed link
	Address string
}

// Repository defines the interface for the observation trail
type Repository interface {
	// Write operations
	WritePass(ctx context.Context, pass *domain.Pass) error

	// Read operations
	ListObservations(ctx context.Context, filter ObservationFilter) ([]domain.Observation, error)
	ListOffline(ctx context.Context, limit int) ([]domain.OfflineFlag, error)
	DeviceNames(ctx context.Context) (map[string]string, error)

	// Close releases resources
	Close() error
}
