package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogLevel is the severity of a recorded log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogLevels lists every accepted level
var LogLevels = []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}

// Valid reports whether l is a known level
func (l LogLevel) Valid() bool {
	for _, level := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// LogEntry is a client-submitted log line stored for review by admins
type LogEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    string          `json:"userId" db:"user_id"`
	Level     LogLevel        `json:"level" db:"level"`
	Message   string          `json:"message" db:"message"`
	Source    string          `json:"source,omitempty" db:"source"`
	Context   json.RawMessage `json:"context,omitempty" db:"context"` // JSONB
	RequestID string          `json:"requestId,omitempty" db:"request_id"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// TableName returns the table name for the LogEntry model
func (LogEntry) TableName() string {
	return "log_entries"
}

// NewLogEntry creates a new LogEntry instance
func NewLogEntry(userID string, level LogLevel, message string) *LogEntry {
	return &LogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// WithSource sets the component that emitted the entry
func (e *LogEntry) WithSource(source string) *LogEntry {
	e.Source = source
	return e
}

// WithContext stores arbitrary structured context. Values that fail to encode are dropped.
func (e *LogEntry) WithContext(ctx interface{}) *LogEntry {
	if ctx == nil {
		return e
	}
	if data, err := json.Marshal(ctx); err == nil {
		e.Context = data
	}
	return e
}

// WithRequest sets request metadata
func (e *LogEntry) WithRequest(requestID string) *LogEntry {
	e.RequestID = requestID
	return e
}

// LogFilter narrows a log listing
type LogFilter struct {
	Levels []LogLevel
	UserID string
	Limit  int
	Offset int
}
