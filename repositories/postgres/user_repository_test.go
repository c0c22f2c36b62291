package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/services"
	"go.uber.org/zap"
)

func TestUserRepository_GetByCognitoSub(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.New()

	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		check func(t *testing.T, user *models.User, err error)
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
					WithArgs("sub-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "email", "cognito_sub", "role", "is_active", "created_at", "updated_at"}).
						AddRow(id.String(), "ops@example.com", "sub-1", "admin", false, now, now))
			},
			check: func(t *testing.T, user *models.User, err error) {
				require.NoError(t, err)
				assert.Equal(t, id, user.ID)
				assert.True(t, user.IsAdmin())
				assert.False(t, user.IsActive)
			},
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM users").WithArgs("sub-1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			check: func(t *testing.T, user *models.User, err error) {
				require.Error(t, err)
				assert.Nil(t, user)
				assert.True(t, services.IsNotFoundError(err))
				assert.Equal(t, "sub-1", services.GetErrorDetails(err)["cognito_sub"])
			},
		},
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM users").WillReturnError(errors.New("timeout"))
			},
			check: func(t *testing.T, user *models.User, err error) {
				require.Error(t, err)
				assert.False(t, services.IsNotFoundError(err))
				assert.Contains(t, err.Error(), "failed to get user")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			user, err := NewUserRepository(db, zap.NewNop()).GetByCognitoSub(context.Background(), "sub-1")
			tt.check(t, user, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	user := models.NewUser("ops@example.com", "sub-1", models.RoleAdmin)
	existing := uuid.New()
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (cognito_sub) DO UPDATE")).
		WithArgs(user.ID, "ops@example.com", "sub-1", models.RoleAdmin, true, user.CreatedAt, user.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(existing.String(), created))

	require.NoError(t, repo.Upsert(context.Background(), user))
	assert.Equal(t, existing, user.ID)
	assert.Equal(t, created, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetActive(t *testing.T) {
	t.Run("updates row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE users").
			WithArgs("sub-1", false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewUserRepository(db, zap.NewNop()).SetActive(context.Background(), "sub-1", false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE users").
			WithArgs("sub-9", false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewUserRepository(db, zap.NewNop()).SetActive(context.Background(), "sub-9", false)
		assert.True(t, services.IsNotFoundError(err))
	})
}
