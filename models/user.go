package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role stored for a user
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User is the local record of a user authenticated via Cognito
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	CognitoSub string    `json:"cognito_sub" db:"cognito_sub"`
	Role       UserRole  `json:"role" db:"role"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user
func NewUser(email, cognitoSub string, role UserRole) *User {
	now := time.Now().UTC()
	return &User{
		ID:         uuid.New(),
		Email:      email,
		CognitoSub: cognitoSub,
		Role:       role,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
