package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/llm-model-access/repositories"
	"go.uber.org/zap"
)

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetPlanTier retrieves a user's plan tier
func (r *UserRepository) GetPlanTier(ctx context.Context, userID uuid.UUID) (*string, error) {
	query := `
		SELECT plan_tier
		FROM users
		WHERE id = $1
	`

	var planTier sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&planTier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("plan tier lookup for unknown user", zap.String("user_id", userID.String()))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan tier: %w", err)
	}

	if !planTier.Valid {
		return nil, nil
	}
	return &planTier.String, nil
}
