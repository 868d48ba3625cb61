package repositories

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository reads account data owned by the user-management system.
type UserRepository interface {
	// GetPlanTier returns the user's plan tier. A user that does not exist,
	// or has no plan tier recorded, yields (nil, nil).
	GetPlanTier(ctx context.Context, userID uuid.UUID) (*string, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Repositories holds all repository instances
type Repositories struct {
	Users UserRepository
}
