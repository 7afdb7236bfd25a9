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

// PostgresArtifactRepository implements ArtifactRepository using PostgreSQL
type PostgresArtifactRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewArtifactRepository creates a new PostgresArtifactRepository
func NewArtifactRepository(config *RepositoryConfig) repositories.ArtifactRepository {
	return &PostgresArtifactRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new artifact
func (r *PostgresArtifactRepository) Create(ctx context.Context, artifact *models.Artifact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (thread_id, current_index, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Artifacts)

	now := time.Now()
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		artifact.ThreadID,
		artifact.CurrentIndex,
		now,
		now,
	).Scan(&artifact.ID, &artifact.CreatedAt, &artifact.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("thread %s: %w", artifact.ThreadID, domain.ErrNotFound)
		}
		return fmt.Errorf("create artifact: %w", err)
	}

	return nil
}

// GetLatestByThread returns the most recently created artifact for the
// thread. At most one artifact per thread is actively extended; later
// artifacts shadow earlier ones.
func (r *PostgresArtifactRepository) GetLatestByThread(ctx context.Context, threadID string) (*models.Artifact, error) {
	query := fmt.Sprintf(`
		SELECT id, thread_id, current_index, created_at, updated_at
		FROM %s
		WHERE thread_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, r.tables.Artifacts)

	var artifact models.Artifact
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, threadID).Scan(
		&artifact.ID,
		&artifact.ThreadID,
		&artifact.CurrentIndex,
		&artifact.CreatedAt,
		&artifact.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("artifact for thread %s: %w", threadID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get latest artifact: %w", err)
	}

	return &artifact, nil
}

// MaxContentIndex returns the highest assigned content index for the
// artifact, 0 if it has none. The artifact row is locked FOR UPDATE so
// two overlapping synchronizer calls serialize their index assignment
// instead of both reading the same maximum.
func (r *PostgresArtifactRepository) MaxContentIndex(ctx context.Context, artifactID string) (int, error) {
	lockQuery := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Artifacts)

	executor := GetExecutor(ctx, r.pool)
	var lockedID string
	if err := executor.QueryRow(ctx, lockQuery, artifactID).Scan(&lockedID); err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("artifact %s: %w", artifactID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("lock artifact: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(index), 0)
		FROM %s
		WHERE artifact_id = $1
	`, r.tables.ArtifactContents)

	var maxIndex int
	if err := executor.QueryRow(ctx, query, artifactID).Scan(&maxIndex); err != nil {
		return 0, fmt.Errorf("max content index: %w", err)
	}

	return maxIndex, nil
}

// InsertContents bulk-inserts content versions with pre-assigned indices
func (r *PostgresArtifactRepository) InsertContents(ctx context.Context, contents []models.ArtifactContent) error {
	if len(contents) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (artifact_id, index, type, title, full_markdown, code, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.ArtifactContents)

	executor := GetExecutor(ctx, r.pool)
	now := time.Now()
	for i := range contents {
		c := &contents[i]
		_, err := executor.Exec(ctx, query,
			c.ArtifactID,
			c.Index,
			c.Type,
			c.Title,
			c.FullMarkdown,
			c.Code,
			c.Language,
			now,
		)
		if err != nil {
			if IsPgDuplicateError(err) {
				return fmt.Errorf("content index %d for artifact %s: %w", c.Index, c.ArtifactID, domain.ErrConflict)
			}
			return fmt.Errorf("insert artifact content %d: %w", c.Index, err)
		}
	}

	return nil
}

// SetCurrentIndex moves the artifact's active version pointer
func (r *PostgresArtifactRepository) SetCurrentIndex(ctx context.Context, artifactID string, index int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET current_index = $1, updated_at = $2 WHERE id = $3
	`, r.tables.Artifacts)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, index, time.Now(), artifactID)
	if err != nil {
		return fmt.Errorf("set current index: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("artifact %s: %w", artifactID, domain.ErrNotFound)
	}

	return nil
}

// ListContents retrieves all content versions for an artifact in index order
func (r *PostgresArtifactRepository) ListContents(ctx context.Context, artifactID string) ([]models.ArtifactContent, error) {
	query := fmt.Sprintf(`
		SELECT id, artifact_id, index, type, title, full_markdown, code, language, created_at
		FROM %s
		WHERE artifact_id = $1
		ORDER BY index ASC
	`, r.tables.ArtifactContents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, artifactID)
	if err != nil {
		return nil, fmt.Errorf("list artifact contents: %w", err)
	}
	defer rows.Close()

	var contents []models.ArtifactContent
	for rows.Next() {
		var c models.ArtifactContent
		err := rows.Scan(
			&c.ID,
			&c.ArtifactID,
			&c.Index,
			&c.Type,
			&c.Title,
			&c.FullMarkdown,
			&c.Code,
			&c.Language,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan artifact content: %w", err)
		}
		contents = append(contents, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifact contents: %w", err)
	}

	return contents, nil
}
