// Package plans resolves a user's plan tier from the account database.
package plans

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/llm-model-access/repositories"
	"github.com/upb/llm-model-access/services"
	"go.uber.org/zap"
)

// Service looks up plan tiers with a read-through cache.
type Service struct {
	users  repositories.UserRepository
	cache  *PlanCache
	logger *zap.Logger
}

// NewService creates a new plan service. cache may be nil to disable caching.
func NewService(users repositories.UserRepository, cache *PlanCache, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

// ResolvePlanTier returns the user's plan tier, nil when none is recorded.
func (s *Service) ResolvePlanTier(ctx context.Context, userID uuid.UUID) (*string, error) {
	if s.cache != nil {
		if tier, ok := s.cache.Get(userID); ok {
			return tier, nil
		}
	}

	tier, err := s.users.GetPlanTier(ctx, userID)
	if err != nil {
		s.logger.Warn("plan tier lookup failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, services.WrapInternal("failed to resolve plan tier", err)
	}

	if s.cache != nil {
		s.cache.Set(userID, tier)
	}
	return tier, nil
}
