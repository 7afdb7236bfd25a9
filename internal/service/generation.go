package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"nova/internal/config"
	"nova/internal/domain"
	"nova/internal/domain/services"
	"nova/internal/proxy"
	"nova/internal/upstream"
)

// Route names, matching the keys in the embedded route policy file.
const (
	RouteGenerateArtifact      = "generate-artifact"
	RouteGenerateFollowup      = "generate-followup"
	RouteUpdateHighlightedText = "update-highlighted-text"
	RouteAgentFollowup         = "agent-generate-followup"
)

// generationService implements the GenerationService interface
type generationService struct {
	registry *upstream.RouteRegistry
	clients  map[string]*upstream.Client
	logger   *slog.Logger
}

// NewGenerationService creates a generation service. clients maps
// credential names from the route registry to configured upstream
// clients.
func NewGenerationService(
	registry *upstream.RouteRegistry,
	clients map[string]*upstream.Client,
	logger *slog.Logger,
) services.GenerationService {
	return &generationService{
		registry: registry,
		clients:  clients,
		logger:   logger,
	}
}

// Open validates the request for the named route and starts the upstream
// streaming call.
func (s *generationService) Open(ctx context.Context, route string, req *services.GenerateRequest) (*services.GenerateStream, error) {
	if err := validateGenerateRequest(route, req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	policy, err := s.registry.Get(route)
	if err != nil {
		return nil, err
	}

	client, ok := s.clients[policy.Credential]
	if !ok {
		return nil, fmt.Errorf("no upstream client configured for credential %q", policy.Credential)
	}

	transform, err := proxy.NewTransform(policy)
	if err != nil {
		return nil, err
	}

	chatReq := &upstream.ChatRequest{
		Inputs:         req.Inputs,
		Query:          req.Query,
		ConversationID: req.ConversationID,
		User:           req.User,
	}
	if chatReq.Inputs == nil {
		chatReq.Inputs = map[string]interface{}{}
	}
	// The follow-up apps receive the artifact as an app input variable
	if req.Artifact != "" {
		chatReq.Inputs["artifact"] = req.Artifact
	}

	resp, err := client.StreamChat(ctx, policy.Path, chatReq)
	if err != nil {
		return nil, err
	}

	s.logger.Info("upstream stream opened",
		"route", route,
		"path", policy.Path,
	)

	return &services.GenerateStream{
		Response:  resp,
		Transform: transform,
	}, nil
}

// validateGenerateRequest enforces each route's required fields. The
// query cap applies everywhere; artifact and inputs are only required
// where the upstream app consumes them.
func validateGenerateRequest(route string, req *services.GenerateRequest) error {
	switch route {
	case RouteGenerateArtifact, RouteAgentFollowup:
		return validation.ValidateStruct(req,
			validation.Field(&req.Query,
				validation.Required,
				validation.Length(1, config.MaxQueryLength),
			),
		)
	case RouteGenerateFollowup:
		return validation.ValidateStruct(req,
			validation.Field(&req.Query,
				validation.Required,
				validation.Length(1, config.MaxQueryLength),
			),
			validation.Field(&req.Artifact, validation.Required),
		)
	case RouteUpdateHighlightedText:
		return validation.ValidateStruct(req,
			validation.Field(&req.Query,
				validation.Required,
				validation.Length(1, config.MaxQueryLength),
			),
			validation.Field(&req.Inputs, validation.Required),
		)
	default:
		return fmt.Errorf("unknown generation route %q", route)
	}
}
