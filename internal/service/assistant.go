package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"nova/internal/config"
	"nova/internal/domain"
	"nova/internal/domain/models"
	"nova/internal/domain/repositories"
	"nova/internal/domain/services"
)

// assistantService implements the AssistantService interface
type assistantService struct {
	assistantRepo repositories.AssistantRepository
	logger        *slog.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(
	assistantRepo repositories.AssistantRepository,
	logger *slog.Logger,
) services.AssistantService {
	return &assistantService{
		assistantRepo: assistantRepo,
		logger:        logger,
	}
}

// CreateAssistant creates a new assistant persona
func (s *assistantService) CreateAssistant(ctx context.Context, req *services.CreateAssistantRequest) (*models.Assistant, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	assistant := &models.Assistant{
		UserID:       req.UserID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		IconData:     req.IconData,
	}

	if err := s.assistantRepo.Create(ctx, assistant); err != nil {
		return nil, err
	}

	s.logger.Info("assistant created",
		"id", assistant.ID,
		"name", assistant.Name,
		"user_id", req.UserID,
	)

	return assistant, nil
}

// GetAssistant retrieves an assistant by ID
func (s *assistantService) GetAssistant(ctx context.Context, id, userID string) (*models.Assistant, error) {
	return s.assistantRepo.GetByID(ctx, id, userID)
}

// ListAssistants retrieves all assistants for a user
func (s *assistantService) ListAssistants(ctx context.Context, userID string) ([]models.Assistant, error) {
	return s.assistantRepo.List(ctx, userID)
}

// UpdateAssistant updates an assistant persona
func (s *assistantService) UpdateAssistant(ctx context.Context, id, userID string, req *services.UpdateAssistantRequest) (*models.Assistant, error) {
	assistant, err := s.assistantRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > config.MaxAssistantNameLength {
			return nil, fmt.Errorf("%w: name must be 1-%d characters", domain.ErrValidation, config.MaxAssistantNameLength)
		}
		assistant.Name = name
	}
	if req.Description != nil {
		assistant.Description = req.Description
	}
	if req.SystemPrompt != nil {
		assistant.SystemPrompt = req.SystemPrompt
	}
	if req.IconData != nil {
		assistant.IconData = req.IconData
	}

	if err := s.assistantRepo.Update(ctx, assistant); err != nil {
		return nil, err
	}

	return assistant, nil
}

// DeleteAssistant removes an assistant
func (s *assistantService) DeleteAssistant(ctx context.Context, id, userID string) error {
	return s.assistantRepo.Delete(ctx, id, userID)
}

func (s *assistantService) validateCreateRequest(req *services.CreateAssistantRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxAssistantNameLength),
		),
	)
}
