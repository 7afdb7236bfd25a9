package repositories

import (
	"context"

	"nova/internal/domain/models"
)

// ArtifactRepository persists artifacts and their immutable content
// versions. Index assignment happens under the caller's transaction:
// MaxContentIndex locks the artifact row so concurrent synchronizer calls
// cannot hand out the same index twice.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *models.Artifact) error
	// GetLatestByThread returns the most recently created artifact for the
	// thread, or ErrNotFound if the thread has none.
	GetLatestByThread(ctx context.Context, threadID string) (*models.Artifact, error)
	// MaxContentIndex returns the highest content index for the artifact
	// (0 if it has no contents), locking the artifact row for update.
	MaxContentIndex(ctx context.Context, artifactID string) (int, error)
	InsertContents(ctx context.Context, contents []models.ArtifactContent) error
	SetCurrentIndex(ctx context.Context, artifactID string, index int) error
	ListContents(ctx context.Context, artifactID string) ([]models.ArtifactContent, error)
}
