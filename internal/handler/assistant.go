package handler

import (
	"log/slog"
	"net/http"

	"nova/internal/domain/models"
	"nova/internal/domain/services"
	"nova/internal/httputil"
)

// AssistantHandler handles assistant HTTP requests
type AssistantHandler struct {
	assistantService services.AssistantService
	logger           *slog.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistantService services.AssistantService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		logger:           logger,
	}
}

// CreateAssistant creates a new assistant persona
// POST /api/assistants
func (h *AssistantHandler) CreateAssistant(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateAssistantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = userID

	assistant, err := h.assistantService.CreateAssistant(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.Assistant, error) {
			return h.assistantService.GetAssistant(r.Context(), id, userID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, assistant)
}

// GetAssistant retrieves a single assistant
// GET /api/assistants/{id}
func (h *AssistantHandler) GetAssistant(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := PathParam(w, r, "id", "Assistant ID")
	if !ok {
		return
	}

	assistant, err := h.assistantService.GetAssistant(r.Context(), assistantID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, assistant)
}

// ListAssistants retrieves all assistants for the caller
// GET /api/assistants
func (h *AssistantHandler) ListAssistants(w http.ResponseWriter, r *http.Request) {
	assistants, err := h.assistantService.ListAssistants(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, assistants)
}

// UpdateAssistant updates an assistant
// PATCH /api/assistants/{id}
func (h *AssistantHandler) UpdateAssistant(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := PathParam(w, r, "id", "Assistant ID")
	if !ok {
		return
	}

	var req services.UpdateAssistantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	assistant, err := h.assistantService.UpdateAssistant(r.Context(), assistantID, httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, assistant)
}

// DeleteAssistant removes an assistant
// DELETE /api/assistants/{id}
func (h *AssistantHandler) DeleteAssistant(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := PathParam(w, r, "id", "Assistant ID")
	if !ok {
		return
	}

	if err := h.assistantService.DeleteAssistant(r.Context(), assistantID, httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
