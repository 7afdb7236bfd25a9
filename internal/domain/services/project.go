package services

import (
	"context"

	"nova/internal/domain/models"
)

// ProjectService defines the business logic for project operations
type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, id, userID string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, id, userID string) error
}

// CreateProjectRequest is the DTO for creating a project
type CreateProjectRequest struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	CoverImage  *string  `json:"cover_image,omitempty"`
	TagIDs      []string `json:"tag_ids,omitempty"`
}

// UpdateProjectRequest is the DTO for updating a project. Nil fields are
// left untouched; TagIDs non-nil replaces the tag set.
type UpdateProjectRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	CoverImage  *string   `json:"cover_image,omitempty"`
	TagIDs      *[]string `json:"tag_ids,omitempty"`
}

// TagService defines the business logic for tag operations
type TagService interface {
	CreateTag(ctx context.Context, req *CreateTagRequest) (*models.Tag, error)
	ListTags(ctx context.Context, userID string) ([]models.Tag, error)
	DeleteTag(ctx context.Context, id, userID string) error
}

// CreateTagRequest is the DTO for creating a tag
type CreateTagRequest struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Color  *string `json:"color,omitempty"`
}
