package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/repositories"
	"go.uber.org/zap"
)

// LogRepository implements the repositories.LogRepository interface
type LogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *DB, logger *zap.Logger) repositories.LogRepository {
	return &LogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new log entry
func (r *LogRepository) Insert(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO log_entries (id, user_id, level, message, source, context, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Level,
		entry.Message,
		nullString(entry.Source),
		nullJSON(entry.Context),
		nullString(entry.RequestID),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	r.logger.Debug("log entry inserted", zap.String("id", entry.ID.String()), zap.String("level", string(entry.Level)))
	return nil
}

// List returns a page of log entries and the total count.
// Both queries run in one read-only transaction so the total matches the page.
func (r *LogRepository) List(ctx context.Context, filter models.LogFilter) ([]*models.LogEntry, int, error) {
	where, args := buildLogWhere(filter)

	var (
		entries []*models.LogEntry
		total   int
	)
	err := r.db.InTransaction(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context) error {
		executor := GetExecutor(ctx, r.db)

		countQuery := "SELECT COUNT(*) FROM log_entries" + where
		if err := executor.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count log entries: %w", err)
		}

		n := len(args)
		listQuery := `
		SELECT id, user_id, level, message, source, context, request_id, created_at
		FROM log_entries` + where + fmt.Sprintf(`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, n+1, n+2)

		rows, err := executor.QueryContext(ctx, listQuery, append(args, filter.Limit, filter.Offset)...)
		if err != nil {
			return fmt.Errorf("failed to query log entries: %w", err)
		}
		defer rows.Close()

		entries, err = scanLogEntries(rows)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func buildLogWhere(filter models.LogFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if len(filter.Levels) > 0 {
		levels := make([]string, len(filter.Levels))
		for i, l := range filter.Levels {
			levels[i] = string(l)
		}
		args = append(args, pq.Array(levels))
		clauses = append(clauses, fmt.Sprintf("level = ANY($%d)", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanLogEntries(rows *sql.Rows) ([]*models.LogEntry, error) {
	entries := make([]*models.LogEntry, 0)
	for rows.Next() {
		var (
			entry     models.LogEntry
			source    sql.NullString
			requestID sql.NullString
			context   []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Level,
			&entry.Message,
			&source,
			&context,
			&requestID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entry.Source = source.String
		entry.RequestID = requestID.String
		if len(context) > 0 {
			entry.Context = context
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log entries: %w", err)
	}
	return entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
