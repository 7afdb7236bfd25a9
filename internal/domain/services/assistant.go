package services

import (
	"context"

	"nova/internal/domain/models"
)

// AssistantService defines the business logic for assistant personas
type AssistantService interface {
	CreateAssistant(ctx context.Context, req *CreateAssistantRequest) (*models.Assistant, error)
	GetAssistant(ctx context.Context, id, userID string) (*models.Assistant, error)
	ListAssistants(ctx context.Context, userID string) ([]models.Assistant, error)
	UpdateAssistant(ctx context.Context, id, userID string, req *UpdateAssistantRequest) (*models.Assistant, error)
	DeleteAssistant(ctx context.Context, id, userID string) error
}

// CreateAssistantRequest is the DTO for creating an assistant
type CreateAssistantRequest struct {
	UserID       string                 `json:"user_id"`
	Name         string                 `json:"name"`
	Description  *string                `json:"description,omitempty"`
	SystemPrompt *string                `json:"system_prompt,omitempty"`
	IconData     map[string]interface{} `json:"icon_data,omitempty"`
}

// UpdateAssistantRequest is the DTO for updating an assistant
type UpdateAssistantRequest struct {
	Name         *string                `json:"name,omitempty"`
	Description  *string                `json:"description,omitempty"`
	SystemPrompt *string                `json:"system_prompt,omitempty"`
	IconData     map[string]interface{} `json:"icon_data,omitempty"`
}

// UserProfileService defines the business logic for user profiles
type UserProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.UserProfile, error)
}

// UpdateProfileRequest is the DTO for updating a profile
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Background  *string `json:"background,omitempty"`
}
