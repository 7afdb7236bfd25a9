package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"nova/internal/domain"
	"nova/internal/domain/models"
	"nova/internal/domain/repositories"
)

// PostgresThreadRepository implements ThreadRepository using PostgreSQL
type PostgresThreadRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewThreadRepository creates a new PostgresThreadRepository
func NewThreadRepository(config *RepositoryConfig) repositories.ThreadRepository {
	return &PostgresThreadRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new thread
func (r *PostgresThreadRepository) Create(ctx context.Context, thread *models.Thread) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, assistant_id, title, model_name, model_config, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Threads)

	now := time.Now()
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		thread.UserID,
		thread.AssistantID,
		thread.Title,
		thread.ModelName,
		thread.ModelConfig,
		thread.Metadata,
		now,
		now,
	).Scan(&thread.ID, &thread.CreatedAt, &thread.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("assistant %v: %w", thread.AssistantID, domain.ErrNotFound)
		}
		return fmt.Errorf("create thread: %w", err)
	}

	return nil
}

// GetByID retrieves a thread owned by the given user.
// Ownership mismatch surfaces as ErrNotFound, never as forbidden.
func (r *PostgresThreadRepository) GetByID(ctx context.Context, id, userID string) (*models.Thread, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, assistant_id, title, model_name, model_config, metadata, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Threads)

	var thread models.Thread
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&thread.ID,
		&thread.UserID,
		&thread.AssistantID,
		&thread.Title,
		&thread.ModelName,
		&thread.ModelConfig,
		&thread.Metadata,
		&thread.CreatedAt,
		&thread.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("thread %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get thread: %w", err)
	}

	return &thread, nil
}

// List retrieves all threads for a user, most recently updated first
func (r *PostgresThreadRepository) List(ctx context.Context, userID string) ([]models.Thread, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, assistant_id, title, model_name, model_config, metadata, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Threads)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var threads []models.Thread
	for rows.Next() {
		var thread models.Thread
		err := rows.Scan(
			&thread.ID,
			&thread.UserID,
			&thread.AssistantID,
			&thread.Title,
			&thread.ModelName,
			&thread.ModelConfig,
			&thread.Metadata,
			&thread.CreatedAt,
			&thread.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, thread)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate threads: %w", err)
	}

	return threads, nil
}

// Update persists title, model and metadata changes
func (r *PostgresThreadRepository) Update(ctx context.Context, thread *models.Thread) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, model_name = $2, model_config = $3, metadata = $4, assistant_id = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`, r.tables.Threads)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		thread.Title,
		thread.ModelName,
		thread.ModelConfig,
		thread.Metadata,
		thread.AssistantID,
		time.Now(),
		thread.ID,
		thread.UserID,
	).Scan(&thread.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("thread %s: %w", thread.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update thread: %w", err)
	}

	return nil
}

// Touch stamps updated_at to now. Ownership is checked by the caller
// before the enclosing transaction starts.
func (r *PostgresThreadRepository) Touch(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET updated_at = $1 WHERE id = $2`, r.tables.Threads)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("touch thread: %w", err)
	}

	return nil
}

// Delete removes a thread; messages, artifacts and artifact contents
// cascade via foreign keys.
func (r *PostgresThreadRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Threads)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("thread %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
