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

// PostgresUserProfileRepository implements UserProfileRepository using PostgreSQL
type PostgresUserProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserProfileRepository creates a new PostgresUserProfileRepository
func NewUserProfileRepository(config *RepositoryConfig) repositories.UserProfileRepository {
	return &PostgresUserProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Get retrieves a user's profile
func (r *PostgresUserProfileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT user_id, display_name, avatar_url, background, created_at, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.UserProfiles)

	var profile models.UserProfile
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.AvatarURL,
		&profile.Background,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	return &profile, nil
}

// Upsert creates the profile row on first write, updates it afterwards
func (r *PostgresUserProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, display_name, avatar_url, background, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    avatar_url = EXCLUDED.avatar_url,
		    background = EXCLUDED.background,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, r.tables.UserProfiles)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		profile.UserID,
		profile.DisplayName,
		profile.AvatarURL,
		profile.Background,
		time.Now(),
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}

	return nil
}
