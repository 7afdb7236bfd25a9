package handler

import (
	"log/slog"
	"net/http"

	"nova/internal/domain"
	"nova/internal/domain/models"
	"nova/internal/domain/services"
	"nova/internal/httputil"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagService services.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService services.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// CreateTag creates a new tag
// POST /api/tags
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateTagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = userID

	tag, err := h.tagService.CreateTag(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.Tag, error) {
			tags, listErr := h.tagService.ListTags(r.Context(), userID)
			if listErr != nil {
				return nil, listErr
			}
			for i := range tags {
				if tags[i].ID == id {
					return &tags[i], nil
				}
			}
			return nil, &domain.NotFoundError{Message: "tag not found"}
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// ListTags retrieves all tags for the caller
// GET /api/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	tags, err := h.tagService.ListTags(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// DeleteTag removes a tag
// DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tagID, ok := PathParam(w, r, "id", "Tag ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	if err := h.tagService.DeleteTag(r.Context(), tagID, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
