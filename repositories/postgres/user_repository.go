package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/repositories"
	"github.com/upb/voice-admin/services"
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

// GetByCognitoSub retrieves a user by Cognito subject
func (r *UserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.User, error) {
	query := `
		SELECT id, email, cognito_sub, role, is_active, created_at, updated_at
		FROM users
		WHERE cognito_sub = $1
	`

	executor := GetExecutor(ctx, r.db)
	user := &models.User{}

	err := executor.QueryRowContext(ctx, query, cognitoSub).Scan(
		&user.ID,
		&user.Email,
		&user.CognitoSub,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userNotFound(cognitoSub)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Upsert inserts user or, when the Cognito subject exists, updates its email and role.
// The stored id and created_at are written back into user.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, cognito_sub, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (cognito_sub) DO UPDATE
		SET email = EXCLUDED.email, role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.CognitoSub,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	r.logger.Debug("user upserted", zap.String("id", user.ID.String()), zap.String("role", string(user.Role)))
	return nil
}

// SetActive activates or deactivates a user
func (r *UserRepository) SetActive(ctx context.Context, cognitoSub string, active bool) error {
	query := `
		UPDATE users
		SET is_active = $2, updated_at = $3
		WHERE cognito_sub = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, cognitoSub, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return userNotFound(cognitoSub)
	}

	r.logger.Debug("user activation changed", zap.String("sub", cognitoSub), zap.Bool("active", active))
	return nil
}

func userNotFound(cognitoSub string) error {
	return services.NewDomainError(services.ErrorTypeNotFound, "user not found", nil).
		WithDetail("cognito_sub", cognitoSub)
}
