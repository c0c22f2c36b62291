package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user := NewUser("admin@example.com", "sub-123", RoleAdmin)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, "sub-123", user.CognitoSub)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	assert.Equal(t, "users", User{}.TableName())

	assert.False(t, NewUser("u@example.com", "sub-456", RoleUser).IsAdmin())
}

func TestNewLogEntry(t *testing.T) {
	entry := NewLogEntry("user-1", LogLevelWarn, "call dropped").
		WithSource("widget").
		WithRequest("req-42").
		WithContext(map[string]interface{}{"agentId": "agent_1", "attempt": 2})

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, LogLevelWarn, entry.Level)
	assert.Equal(t, "widget", entry.Source)
	assert.Equal(t, "req-42", entry.RequestID)
	assert.JSONEq(t, `{"agentId":"agent_1","attempt":2}`, string(entry.Context))
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Equal(t, "log_entries", LogEntry{}.TableName())
}

func TestLogEntry_WithContext(t *testing.T) {
	t.Run("nil context leaves entry untouched", func(t *testing.T) {
		entry := NewLogEntry("u", LogLevelInfo, "m").WithContext(nil)
		assert.Nil(t, entry.Context)
	})

	t.Run("unencodable context is dropped", func(t *testing.T) {
		entry := NewLogEntry("u", LogLevelInfo, "m").WithContext(map[string]interface{}{"ch": make(chan int)})
		assert.Nil(t, entry.Context)
	})
}

func TestLogEntry_JSON(t *testing.T) {
	entry := NewLogEntry("user-1", LogLevelError, "boom")

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "user-1", decoded["userId"])
	assert.Equal(t, "error", decoded["level"])
	assert.NotContains(t, decoded, "context")
	assert.NotContains(t, decoded, "source")
}

func TestLogLevel_Valid(t *testing.T) {
	for _, level := range LogLevels {
		assert.True(t, level.Valid(), level)
	}
	assert.False(t, LogLevel("fatal").Valid())
	assert.False(t, LogLevel("").Valid())
}
