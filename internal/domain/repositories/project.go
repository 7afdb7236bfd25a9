package repositories

import (
	"context"

	"nova/internal/domain/models"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)
	List(ctx context.Context, userID string) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id, userID string) error
	SetTags(ctx context.Context, projectID string, tagIDs []string) error
}

// TagRepository persists per-user tags.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	List(ctx context.Context, userID string) ([]models.Tag, error)
	Delete(ctx context.Context, id, userID string) error
}
