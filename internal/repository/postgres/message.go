package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"nova/internal/domain/models"
	"nova/internal/domain/repositories"
)

// PostgresMessageRepository implements MessageRepository using PostgreSQL
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewMessageRepository creates a new PostgresMessageRepository
func NewMessageRepository(config *RepositoryConfig) repositories.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListByThread retrieves a thread's messages ordered by sequence number
func (r *PostgresMessageRepository) ListByThread(ctx context.Context, threadID string) ([]models.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, thread_id, type, content, sequence_number, tool_calls, additional_kwargs, response_metadata, usage_metadata, created_at
		FROM %s
		WHERE thread_id = $1
		ORDER BY sequence_number ASC
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.ThreadID,
			&msg.Type,
			&msg.Content,
			&msg.SequenceNumber,
			&msg.ToolCalls,
			&msg.AdditionalKwargs,
			&msg.ResponseMetadata,
			&msg.UsageMetadata,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// DeleteByThread removes every message for the thread. Used by the state
// synchronizer's full-replace path inside a transaction.
func (r *PostgresMessageRepository) DeleteByThread(ctx context.Context, threadID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE thread_id = $1`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, threadID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	return nil
}

// InsertAll bulk-inserts messages with their pre-assigned sequence numbers
func (r *PostgresMessageRepository) InsertAll(ctx context.Context, messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (thread_id, type, content, sequence_number, tool_calls, additional_kwargs, response_metadata, usage_metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	now := time.Now()
	for i := range messages {
		msg := &messages[i]
		_, err := executor.Exec(ctx, query,
			msg.ThreadID,
			msg.Type,
			msg.Content,
			msg.SequenceNumber,
			msg.ToolCalls,
			msg.AdditionalKwargs,
			msg.ResponseMetadata,
			msg.UsageMetadata,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert message %d: %w", msg.SequenceNumber, err)
		}
	}

	return nil
}
