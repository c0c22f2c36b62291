package logs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/upb/voice-admin/auth"
	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/repositories"
	"github.com/upb/voice-admin/services"
	"github.com/upb/voice-admin/utils"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// LogInput is the body of a log submission
type LogInput struct {
	Level     string          `json:"level" validate:"required,oneof=debug info warn error"`
	Message   string          `json:"message" validate:"required,max=4096"`
	Source    string          `json:"source,omitempty" validate:"max=128"`
	Context   json.RawMessage `json:"context,omitempty"`
	RequestID string          `json:"-"`
}

// ListResult is one page of log entries
type ListResult struct {
	Logs   []*models.LogEntry `json:"logs"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// LogService records and lists client log entries
type LogService struct {
	repo   repositories.LogRepository
	logger *zap.Logger
}

// NewLogService creates a new LogService. A nil repo makes every call fail with
// services.ErrLogsUnavailable.
func NewLogService(repo repositories.LogRepository, logger *zap.Logger) *LogService {
	return &LogService{
		repo:   repo,
		logger: logger,
	}
}

// RecordLog validates input and stores it on behalf of session
func (s *LogService) RecordLog(ctx context.Context, session auth.Session, input LogInput) (*models.LogEntry, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, services.WrapMalformed("invalid log entry", err)
	}
	if len(input.Context) > 0 && !json.Valid(input.Context) {
		return nil, services.WrapMalformed("invalid log entry", fmt.Errorf("context is not valid JSON"))
	}
	if s.repo == nil {
		return nil, services.ErrLogsUnavailable
	}

	message, redacted := redactSecrets(input.Message)
	if redacted {
		s.logger.Debug("secrets redacted from log message", zap.String("user_id", session.UserID))
	}

	entry := models.NewLogEntry(session.UserID, models.LogLevel(input.Level), message).
		WithSource(input.Source).
		WithRequest(input.RequestID)
	if len(input.Context) > 0 && string(input.Context) != "null" {
		entry.Context = input.Context
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, services.WrapUpstream("log storage failed", err)
	}

	s.logger.Debug("log entry recorded",
		zap.String("id", entry.ID.String()),
		zap.String("user_id", entry.UserID),
		zap.String("level", string(entry.Level)),
	)
	return entry, nil
}

// ListLogs returns a page of entries. Limit defaults to DefaultLimit and is capped at MaxLimit.
func (s *LogService) ListLogs(ctx context.Context, filter models.LogFilter) (*ListResult, error) {
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, services.ErrLogsUnavailable
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, services.WrapUpstream("log storage failed", err)
	}

	return &ListResult{
		Logs:   entries,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// NormalizeFilter applies paging defaults and rejects unknown levels
func NormalizeFilter(filter models.LogFilter) (models.LogFilter, error) {
	if filter.Offset < 0 {
		return filter, services.WrapMalformed("invalid log filter", fmt.Errorf("offset must not be negative"))
	}
	switch {
	case filter.Limit < 0:
		return filter, services.WrapMalformed("invalid log filter", fmt.Errorf("limit must not be negative"))
	case filter.Limit == 0:
		filter.Limit = DefaultLimit
	case filter.Limit > MaxLimit:
		filter.Limit = MaxLimit
	}

	seen := make(map[models.LogLevel]bool, len(filter.Levels))
	levels := make([]models.LogLevel, 0, len(filter.Levels))
	for _, level := range filter.Levels {
		if !level.Valid() {
			return filter, services.WrapMalformed("invalid log filter", fmt.Errorf("unknown level %q", level))
		}
		if !seen[level] {
			seen[level] = true
			levels = append(levels, level)
		}
	}
	filter.Levels = levels
	return filter, nil
}
