package services

import (
	"context"

	"nova/internal/domain/models"
)

// ThreadService defines the business logic for conversation threads,
// including the full-state synchronizer used by the canvas UI.
type ThreadService interface {
	// CreateThread creates a new conversation thread
	CreateThread(ctx context.Context, req *CreateThreadRequest) (*models.Thread, error)

	// GetThread retrieves a thread by ID, scoped to the owning user
	GetThread(ctx context.Context, threadID, userID string) (*models.Thread, error)

	// ListThreads retrieves all threads for a user
	ListThreads(ctx context.Context, userID string) ([]models.Thread, error)

	// UpdateThread updates a thread's title, model or metadata
	UpdateThread(ctx context.Context, threadID, userID string, req *UpdateThreadRequest) (*models.Thread, error)

	// DeleteThread removes a thread; messages and artifacts cascade
	DeleteThread(ctx context.Context, threadID, userID string) error

	// GetState assembles the thread's full state: messages plus the
	// active artifact with all its content versions
	GetState(ctx context.Context, threadID, userID string) (*ThreadState, error)

	// SyncState reconciles persisted rows against a client-supplied full
	// snapshot. The message list is replaced wholesale; artifact contents
	// are appended as new immutable versions with server-assigned
	// indices. The whole reconciliation runs in one transaction.
	SyncState(ctx context.Context, threadID, userID string, snapshot *StateSnapshot) error
}

// CreateThreadRequest is the DTO for creating a thread
type CreateThreadRequest struct {
	UserID      string                 `json:"user_id"`
	AssistantID *string                `json:"assistant_id,omitempty"`
	Title       string                 `json:"title"`
	ModelName   string                 `json:"model_name"`
	ModelConfig map[string]interface{} `json:"model_config,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// UpdateThreadRequest is the DTO for updating a thread. Nil fields are
// left untouched.
type UpdateThreadRequest struct {
	Title       *string                `json:"title,omitempty"`
	ModelName   *string                `json:"model_name,omitempty"`
	ModelConfig map[string]interface{} `json:"model_config,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	AssistantID *string                `json:"assistant_id,omitempty"`
}

// StateSnapshot is the client-supplied full conversation state, shaped
// the way the LangGraph-style frontend sends it.
type StateSnapshot struct {
	Values StateValues `json:"values"`
}

// StateValues holds the snapshot payload. Messages being nil (field
// absent) means "leave messages alone"; an empty array means "replace
// with nothing". Message elements are kept as raw maps because two wire
// shapes arrive here: plain {type|role, content} objects and
// LangChain-style constructor envelopes.
type StateValues struct {
	Artifact *ArtifactSnapshot         `json:"artifact,omitempty"`
	Messages *[]map[string]interface{} `json:"messages,omitempty"`
}

// ArtifactSnapshot carries new artifact content versions. Contents are
// appended in array order with server-assigned indices; the client never
// supplies an index.
type ArtifactSnapshot struct {
	CurrentIndex int                       `json:"currentIndex,omitempty"`
	Contents     []ArtifactContentSnapshot `json:"contents,omitempty"`
}

// ArtifactContentSnapshot is one new content version from the client.
type ArtifactContentSnapshot struct {
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	FullMarkdown *string `json:"fullMarkdown,omitempty"`
	Code         *string `json:"code,omitempty"`
	Language     *string `json:"language,omitempty"`
}

// ThreadState is the assembled read-side view of a thread's state.
type ThreadState struct {
	Values ThreadStateValues `json:"values"`
}

// ThreadStateValues mirrors StateValues on the read side, with resolved
// database rows instead of raw client shapes.
type ThreadStateValues struct {
	Artifact *ArtifactState   `json:"artifact,omitempty"`
	Messages []models.Message `json:"messages"`
}

// ArtifactState is the active artifact with all its content versions.
type ArtifactState struct {
	ID           string                   `json:"id"`
	CurrentIndex int                      `json:"currentIndex"`
	Contents     []models.ArtifactContent `json:"contents"`
}
