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

// tagService implements the TagService interface
type tagService struct {
	tagRepo repositories.TagRepository
	logger  *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(tagRepo repositories.TagRepository, logger *slog.Logger) services.TagService {
	return &tagService{
		tagRepo: tagRepo,
		logger:  logger,
	}
}

// CreateTag creates a new tag
func (s *tagService) CreateTag(ctx context.Context, req *services.CreateTagRequest) (*models.Tag, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	tag := &models.Tag{
		UserID: req.UserID,
		Name:   strings.TrimSpace(req.Name),
		Color:  req.Color,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// ListTags retrieves all tags for a user
func (s *tagService) ListTags(ctx context.Context, userID string) ([]models.Tag, error) {
	return s.tagRepo.List(ctx, userID)
}

// DeleteTag removes a tag
func (s *tagService) DeleteTag(ctx context.Context, id, userID string) error {
	return s.tagRepo.Delete(ctx, id, userID)
}

func (s *tagService) validateCreateRequest(req *services.CreateTagRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxTagNameLength),
		),
	)
}
