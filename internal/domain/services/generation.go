package services

import (
	"context"
	"net/http"

	"nova/internal/proxy"
)

// GenerationService validates generation requests, resolves the route's
// upstream policy, and opens the upstream stream. The handler pumps the
// returned body through the transform; splitting it this way keeps the
// HTTP streaming mechanics out of the service layer.
type GenerationService interface {
	// Open validates req against the named route's requirements and
	// starts the upstream streaming call. The caller owns resp.Body.
	Open(ctx context.Context, route string, req *GenerateRequest) (*GenerateStream, error)
}

// GenerateRequest is the union of the bodies accepted by the four
// generation routes. Which fields are required depends on the route.
type GenerateRequest struct {
	Query          string                 `json:"query"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	Artifact       string                 `json:"artifact,omitempty"`
	Inputs         map[string]interface{} `json:"inputs,omitempty"`
	User           string                 `json:"user,omitempty"`
}

// GenerateStream is an accepted upstream stream plus the transform that
// shapes its frames for the client.
type GenerateStream struct {
	Response  *http.Response
	Transform proxy.Transform
}
