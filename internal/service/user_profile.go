package service

import (
	"context"
	"errors"
	"log/slog"

	"nova/internal/domain"
	"nova/internal/domain/models"
	"nova/internal/domain/repositories"
	"nova/internal/domain/services"
)

// userProfileService implements the UserProfileService interface
type userProfileService struct {
	profileRepo repositories.UserProfileRepository
	logger      *slog.Logger
}

// NewUserProfileService creates a new user profile service
func NewUserProfileService(
	profileRepo repositories.UserProfileRepository,
	logger *slog.Logger,
) services.UserProfileService {
	return &userProfileService{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// GetProfile retrieves the caller's profile, returning an empty profile
// rather than 404 for users who have never saved one.
func (s *userProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &models.UserProfile{UserID: userID}, nil
		}
		return nil, err
	}

	return profile, nil
}

// UpdateProfile upserts the caller's profile
func (s *userProfileService) UpdateProfile(ctx context.Context, userID string, req *services.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = req.DisplayName
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	if req.Background != nil {
		profile.Background = req.Background
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}
