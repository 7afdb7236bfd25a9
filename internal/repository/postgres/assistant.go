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

// PostgresAssistantRepository implements AssistantRepository using PostgreSQL
type PostgresAssistantRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAssistantRepository creates a new PostgresAssistantRepository
func NewAssistantRepository(config *RepositoryConfig) repositories.AssistantRepository {
	return &PostgresAssistantRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new assistant
func (r *PostgresAssistantRepository) Create(ctx context.Context, assistant *models.Assistant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name, description, system_prompt, icon_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Assistants)

	now := time.Now()
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		assistant.UserID,
		assistant.Name,
		assistant.Description,
		assistant.SystemPrompt,
		assistant.IconData,
		now,
		now,
	).Scan(&assistant.ID, &assistant.CreatedAt, &assistant.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create assistant: %w", err)
	}

	return nil
}

// GetByID retrieves an assistant owned by the given user
func (r *PostgresAssistantRepository) GetByID(ctx context.Context, id, userID string) (*models.Assistant, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, description, system_prompt, icon_data, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Assistants)

	var assistant models.Assistant
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&assistant.ID,
		&assistant.UserID,
		&assistant.Name,
		&assistant.Description,
		&assistant.SystemPrompt,
		&assistant.IconData,
		&assistant.CreatedAt,
		&assistant.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("assistant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get assistant: %w", err)
	}

	return &assistant, nil
}

// List retrieves all assistants for a user
func (r *PostgresAssistantRepository) List(ctx context.Context, userID string) ([]models.Assistant, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, description, system_prompt, icon_data, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Assistants)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}
	defer rows.Close()

	var assistants []models.Assistant
	for rows.Next() {
		var a models.Assistant
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Name,
			&a.Description,
			&a.SystemPrompt,
			&a.IconData,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assistant: %w", err)
		}
		assistants = append(assistants, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assistants: %w", err)
	}

	return assistants, nil
}

// Update persists assistant changes
func (r *PostgresAssistantRepository) Update(ctx context.Context, assistant *models.Assistant) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, system_prompt = $3, icon_data = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at
	`, r.tables.Assistants)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		assistant.Name,
		assistant.Description,
		assistant.SystemPrompt,
		assistant.IconData,
		time.Now(),
		assistant.ID,
		assistant.UserID,
	).Scan(&assistant.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("assistant %s: %w", assistant.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update assistant: %w", err)
	}

	return nil
}

// Delete removes an assistant. Threads referencing it keep running with a
// nulled assistant_id (ON DELETE SET NULL).
func (r *PostgresAssistantRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Assistants)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete assistant: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assistant %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
