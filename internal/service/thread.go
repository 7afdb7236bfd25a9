package service

import (
	"context"
	"errors"
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

// threadService implements the ThreadService interface
type threadService struct {
	threadRepo   repositories.ThreadRepository
	messageRepo  repositories.MessageRepository
	artifactRepo repositories.ArtifactRepository
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewThreadService creates a new thread service
func NewThreadService(
	threadRepo repositories.ThreadRepository,
	messageRepo repositories.MessageRepository,
	artifactRepo repositories.ArtifactRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ThreadService {
	return &threadService{
		threadRepo:   threadRepo,
		messageRepo:  messageRepo,
		artifactRepo: artifactRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateThread creates a new conversation thread
func (s *threadService) CreateThread(ctx context.Context, req *services.CreateThreadRequest) (*models.Thread, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	thread := &models.Thread{
		UserID:      req.UserID,
		AssistantID: req.AssistantID,
		Title:       strings.TrimSpace(req.Title),
		ModelName:   req.ModelName,
		ModelConfig: req.ModelConfig,
		Metadata:    req.Metadata,
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}

	s.logger.Info("thread created",
		"id", thread.ID,
		"user_id", req.UserID,
	)

	return thread, nil
}

// GetThread retrieves a thread by ID
func (s *threadService) GetThread(ctx context.Context, threadID, userID string) (*models.Thread, error) {
	return s.threadRepo.GetByID(ctx, threadID, userID)
}

// ListThreads retrieves all threads for a user
func (s *threadService) ListThreads(ctx context.Context, userID string) ([]models.Thread, error) {
	return s.threadRepo.List(ctx, userID)
}

// UpdateThread updates a thread's title, model or metadata
func (s *threadService) UpdateThread(ctx context.Context, threadID, userID string, req *services.UpdateThreadRequest) (*models.Thread, error) {
	thread, err := s.threadRepo.GetByID(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || len(title) > config.MaxThreadTitleLength {
			return nil, fmt.Errorf("%w: title must be 1-%d characters", domain.ErrValidation, config.MaxThreadTitleLength)
		}
		thread.Title = title
	}
	if req.ModelName != nil {
		thread.ModelName = *req.ModelName
	}
	if req.ModelConfig != nil {
		thread.ModelConfig = req.ModelConfig
	}
	if req.Metadata != nil {
		thread.Metadata = req.Metadata
	}
	if req.AssistantID != nil {
		thread.AssistantID = req.AssistantID
	}

	if err := s.threadRepo.Update(ctx, thread); err != nil {
		return nil, err
	}

	return thread, nil
}

// DeleteThread removes a thread and its dependent rows
func (s *threadService) DeleteThread(ctx context.Context, threadID, userID string) error {
	if err := s.threadRepo.Delete(ctx, threadID, userID); err != nil {
		return err
	}

	s.logger.Info("thread deleted",
		"id", threadID,
		"user_id", userID,
	)

	return nil
}

// GetState assembles the read-side view of a thread's state
func (s *threadService) GetState(ctx context.Context, threadID, userID string) (*services.ThreadState, error) {
	// Ownership check doubles as existence check
	if _, err := s.threadRepo.GetByID(ctx, threadID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}

	state := &services.ThreadState{
		Values: services.ThreadStateValues{Messages: messages},
	}

	artifact, err := s.artifactRepo.GetLatestByThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return state, nil
		}
		return nil, err
	}

	contents, err := s.artifactRepo.ListContents(ctx, artifact.ID)
	if err != nil {
		return nil, err
	}

	state.Values.Artifact = &services.ArtifactState{
		ID:           artifact.ID,
		CurrentIndex: artifact.CurrentIndex,
		Contents:     contents,
	}

	return state, nil
}

func (s *threadService) validateCreateRequest(req *services.CreateThreadRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxThreadTitleLength),
		),
	)
}
