package upstream

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Transform names a frame-transform policy. The proxy package maps these
// to concrete implementations.
const (
	TransformMessageFilter    = "message_filter"
	TransformTextChunkRewrite = "text_chunk_rewrite"
	TransformPassthrough      = "passthrough"
)

// Credential names referenced by the route policy file. The server binds
// one Client per credential at startup.
const (
	CredentialArtifact  = "artifact"
	CredentialFollowup  = "followup"
	CredentialHighlight = "highlight"
	CredentialAgent     = "agent"
)

// RoutePolicy describes how one proxied generation route talks to its
// upstream application and which frames it forwards.
type RoutePolicy struct {
	Path              string `yaml:"path"`
	Credential        string `yaml:"credential"`
	Transform         string `yaml:"transform"`
	StampConversation bool   `yaml:"stamp_conversation"`
	ForwardDone       bool   `yaml:"forward_done"`
}

type routesFile struct {
	Routes map[string]*RoutePolicy `yaml:"routes"`
}

// RouteRegistry holds the per-route proxy policies loaded at startup from
// the embedded YAML file.
type RouteRegistry struct {
	routes map[string]*RoutePolicy
	mu     sync.RWMutex
}

// NewRouteRegistry loads the embedded route policy file.
func NewRouteRegistry() (*RouteRegistry, error) {
	data, err := configFiles.ReadFile("config/routes.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read route config: %w", err)
	}

	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal route config: %w", err)
	}

	for name, policy := range file.Routes {
		if err := validatePolicy(name, policy); err != nil {
			return nil, err
		}
	}

	return &RouteRegistry{routes: file.Routes}, nil
}

func validatePolicy(name string, policy *RoutePolicy) error {
	if policy.Path == "" {
		return fmt.Errorf("route %s: missing path", name)
	}
	if policy.Credential == "" {
		return fmt.Errorf("route %s: missing credential", name)
	}
	switch policy.Transform {
	case TransformMessageFilter, TransformTextChunkRewrite, TransformPassthrough:
		return nil
	default:
		return fmt.Errorf("route %s: unknown transform %q", name, policy.Transform)
	}
}

// Get returns the policy for a named route.
func (r *RouteRegistry) Get(name string) (*RoutePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.routes[name]
	if !ok {
		return nil, fmt.Errorf("no route policy for %q", name)
	}

	return policy, nil
}

// Names returns all configured route names.
func (r *RouteRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	return names
}
