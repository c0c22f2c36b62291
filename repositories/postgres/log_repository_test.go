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
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return Wrap(sqlDB, zap.NewNop()), mock
}

var logColumns = []string{"id", "user_id", "level", "message", "source", "context", "request_id", "created_at"}

func TestLogRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLogRepository(db, zap.NewNop())

	entry := models.NewLogEntry("user-1", models.LogLevelWarn, "disk almost full").
		WithSource("dashboard").
		WithContext(map[string]int{"free": 3})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO log_entries")).
		WithArgs(entry.ID, "user-1", models.LogLevelWarn, "disk almost full", "dashboard", `{"free":3}`, nil, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepository_InsertError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLogRepository(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO log_entries").WillReturnError(errors.New("connection reset"))

	err := repo.Insert(context.Background(), models.NewLogEntry("user-1", models.LogLevelInfo, "hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert log entry")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestLogRepository_List(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	t.Run("no filter", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLogRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM log_entries")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM log_entries\s+ORDER BY created_at DESC\s+LIMIT \$1 OFFSET \$2`).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(logColumns).
				AddRow(id.String(), "user-1", "error", "boom", nil, nil, "req-1", created))
		mock.ExpectCommit()

		entries, total, err := repo.List(context.Background(), models.LogFilter{Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, entries, 1)
		assert.Equal(t, id, entries[0].ID)
		assert.Equal(t, models.LogLevelError, entries[0].Level)
		assert.Empty(t, entries[0].Source)
		assert.Nil(t, entries[0].Context)
		assert.Equal(t, "req-1", entries[0].RequestID)
		assert.Equal(t, created, entries[0].CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("levels and user filter", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLogRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM log_entries WHERE level = ANY($1) AND user_id = $2")).
			WithArgs(sqlmock.AnyArg(), "user-2").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`WHERE level = ANY\(\$1\) AND user_id = \$2\s+ORDER BY created_at DESC\s+LIMIT \$3 OFFSET \$4`).
			WithArgs(sqlmock.AnyArg(), "user-2", 10, 20).
			WillReturnRows(sqlmock.NewRows(logColumns))
		mock.ExpectCommit()

		entries, total, err := repo.List(context.Background(), models.LogFilter{
			Levels: []models.LogLevel{models.LogLevelWarn, models.LogLevelError},
			UserID: "user-2",
			Limit:  10,
			Offset: 20,
		})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLogRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("relation does not exist"))
		mock.ExpectRollback()

		_, _, err := repo.List(context.Background(), models.LogFilter{Limit: 50})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to count log entries")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
