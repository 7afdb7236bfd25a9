package repositories

import (
	"context"

	"nova/internal/domain/models"
)

// ThreadRepository persists conversation threads.
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id, userID string) (*models.Thread, error)
	List(ctx context.Context, userID string) ([]models.Thread, error)
	Update(ctx context.Context, thread *models.Thread) error
	// Touch stamps updated_at without changing any other column.
	Touch(ctx context.Context, id string) error
	// Delete removes the thread; messages and artifacts cascade.
	Delete(ctx context.Context, id, userID string) error
}

// MessageRepository persists thread messages. The synchronizer replaces a
// thread's message set wholesale, so the write surface is delete + bulk
// insert rather than per-row updates.
type MessageRepository interface {
	ListByThread(ctx context.Context, threadID string) ([]models.Message, error)
	DeleteByThread(ctx context.Context, threadID string) error
	InsertAll(ctx context.Context, messages []models.Message) error
}
