package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nova/internal/domain/services"
	"nova/internal/httputil"
	"nova/internal/proxy"
	"nova/internal/service"
	"nova/internal/sse"
	"nova/internal/upstream"
)

// keepAliveInterval is how often SSE comment pings go out while upstream
// is quiet between tokens. 10s stays under common proxy idle timeouts.
const keepAliveInterval = 10 * time.Second

// GenerateHandler serves the streaming generation routes. Each route
// opens one upstream stream and pipes the filtered frames back to the
// browser as a new SSE stream.
type GenerateHandler struct {
	genService services.GenerationService
	logger     *slog.Logger
}

// NewGenerateHandler creates a new generation handler
func NewGenerateHandler(genService services.GenerationService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		genService: genService,
		logger:     logger,
	}
}

// GenerateArtifact streams artifact generation
// POST /api/dify/generate-artifact
func (h *GenerateHandler) GenerateArtifact(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, service.RouteGenerateArtifact)
}

// GenerateFollowup streams a follow-up reply about an existing artifact
// POST /api/dify/generate-followup
func (h *GenerateHandler) GenerateFollowup(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, service.RouteGenerateFollowup)
}

// UpdateHighlightedText streams a rewrite of a highlighted artifact span
// POST /api/dify/update-highlighted-text
func (h *GenerateHandler) UpdateHighlightedText(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, service.RouteUpdateHighlightedText)
}

// AgentGenerateFollowup streams the agent workflow near-verbatim
// POST /api/agent/generate-followup
func (h *GenerateHandler) AgentGenerateFollowup(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, service.RouteAgentFollowup)
}

func (h *GenerateHandler) stream(w http.ResponseWriter, r *http.Request, route string) {
	userID := httputil.GetUserID(r)

	var req services.GenerateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.User == "" {
		req.User = userID
	}

	gen, err := h.genService.Open(r.Context(), route, &req)
	if err != nil {
		h.respondOpenError(w, route, err)
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		gen.Response.Body.Close()
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	writer.WriteHeaders()

	// Hold the connection open through upstream quiet periods
	keepAlive := sse.NewTickerKeepAlive(keepAliveInterval)
	keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	result := proxy.Pump(r.Context(), writer, gen.Response.Body, gen.Transform, h.logger)

	logAttrs := []any{
		"route", route,
		"state", string(result.State),
		"frames_forwarded", result.FramesForwarded,
		"user_id", userID,
	}
	if result.State == proxy.StateErrored {
		h.logger.Error("stream terminated abnormally", logAttrs...)
	} else {
		h.logger.Info("stream finished", logAttrs...)
	}
}

// respondOpenError maps pre-stream failures. Upstream rejections are
// relayed with the upstream's own status and body, no retry.
func (h *GenerateHandler) respondOpenError(w http.ResponseWriter, route string, err error) {
	var upstreamErr *upstream.Error
	if errors.As(err, &upstreamErr) {
		h.logger.Error("upstream call failed",
			"route", route,
			"status", upstreamErr.Status,
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(upstreamErr.Status)
		w.Write(upstreamErr.Body)
		return
	}

	handleError(w, err)
}
