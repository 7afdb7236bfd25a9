package repositories

import (
	"context"

	"nova/internal/domain/models"
)

// AssistantRepository persists generation personas.
type AssistantRepository interface {
	Create(ctx context.Context, assistant *models.Assistant) error
	GetByID(ctx context.Context, id, userID string) (*models.Assistant, error)
	List(ctx context.Context, userID string) ([]models.Assistant, error)
	Update(ctx context.Context, assistant *models.Assistant) error
	Delete(ctx context.Context, id, userID string) error
}

// UserProfileRepository persists one profile row per user.
type UserProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Upsert creates the profile on first write.
	Upsert(ctx context.Context, profile *models.UserProfile) error
}
