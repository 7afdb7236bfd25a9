package service

import (
	"strings"
	"testing"

	"nova/internal/config"
	"nova/internal/domain/services"
)

func TestValidateGenerateRequest(t *testing.T) {
	longQuery := strings.Repeat("x", config.MaxQueryLength+1)

	tests := []struct {
		name    string
		route   string
		req     services.GenerateRequest
		wantErr bool
	}{
		{
			name:  "artifact route needs only query",
			route: RouteGenerateArtifact,
			req:   services.GenerateRequest{Query: "write a poem"},
		},
		{
			name:    "artifact route empty query rejected",
			route:   RouteGenerateArtifact,
			req:     services.GenerateRequest{},
			wantErr: true,
		},
		{
			name:    "query over length cap rejected",
			route:   RouteGenerateArtifact,
			req:     services.GenerateRequest{Query: longQuery},
			wantErr: true,
		},
		{
			name:  "followup route needs query and artifact",
			route: RouteGenerateFollowup,
			req:   services.GenerateRequest{Query: "summarize", Artifact: "# Doc"},
		},
		{
			name:    "followup route missing artifact rejected",
			route:   RouteGenerateFollowup,
			req:     services.GenerateRequest{Query: "summarize"},
			wantErr: true,
		},
		{
			name:  "highlight route needs query and inputs",
			route: RouteUpdateHighlightedText,
			req: services.GenerateRequest{
				Query:  "make it formal",
				Inputs: map[string]interface{}{"highlighted": "hey there"},
			},
		},
		{
			name:    "highlight route missing inputs rejected",
			route:   RouteUpdateHighlightedText,
			req:     services.GenerateRequest{Query: "make it formal"},
			wantErr: true,
		},
		{
			name:  "agent route needs only query",
			route: RouteAgentFollowup,
			req:   services.GenerateRequest{Query: "next steps?"},
		},
		{
			name:    "unknown route rejected",
			route:   "mystery-route",
			req:     services.GenerateRequest{Query: "hello"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGenerateRequest(tt.route, &tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
