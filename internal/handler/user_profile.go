package handler

import (
	"log/slog"
	"net/http"

	"nova/internal/domain/services"
	"nova/internal/httputil"
)

// UserProfileHandler handles profile HTTP requests for the authenticated user
type UserProfileHandler struct {
	profileService services.UserProfileService
	logger         *slog.Logger
}

// NewUserProfileHandler creates a new profile handler
func NewUserProfileHandler(profileService services.UserProfileService, logger *slog.Logger) *UserProfileHandler {
	return &UserProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// GetProfile retrieves the caller's profile
// GET /api/users/me/profile
func (h *UserProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetProfile(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// UpdateProfile upserts the caller's profile
// PUT /api/users/me/profile
func (h *UserProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}
