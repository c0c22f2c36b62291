package repositories

import (
	"context"

	"github.com/upb/voice-admin/models"
)

// LogRepository handles log entry persistence
type LogRepository interface {
	// Insert stores a new log entry
	Insert(ctx context.Context, entry *models.LogEntry) error

	// List returns the page of entries matching filter, newest first, and the
	// total number of matching entries
	List(ctx context.Context, filter models.LogFilter) ([]*models.LogEntry, int, error)
}

// UserRepository handles user data operations
type UserRepository interface {
	// GetByCognitoSub retrieves a user by Cognito subject
	GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.User, error)

	// Upsert creates the user or updates email and role of an existing one
	Upsert(ctx context.Context, user *models.User) error

	// SetActive activates or deactivates a user
	SetActive(ctx context.Context, cognitoSub string, active bool) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Logs  LogRepository
	Users UserRepository
}
