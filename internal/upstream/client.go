package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// ChatRequest is the request body for a Dify chat-messages or
// workflows/run call. Inputs carries app-specific variables (for the
// highlight-rewrite app: the artifact, the highlighted span, the edit
// instruction).
type ChatRequest struct {
	Inputs         map[string]interface{} `json:"inputs"`
	Query          string                 `json:"query"`
	ResponseMode   string                 `json:"response_mode"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	User           string                 `json:"user"`
}

// Error is a non-2xx upstream response. The body is relayed to the
// caller with the upstream's own status code, no retry.
type Error struct {
	Status int
	Body   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// Client issues streaming requests against one Dify application.
// Each application has its own bearer credential, so routes that map to
// different Dify apps each get their own Client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for a single Dify application endpoint.
// The HTTP client has a connect timeout but no overall request timeout:
// streaming responses stay open for as long as generation runs, and
// cancellation is the caller's context's job.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
		logger: logger,
	}
}

// StreamChat POSTs the request with response_mode "streaming" and returns
// the raw response once upstream has accepted it. The caller owns the
// body and must close it. Non-2xx responses are drained into an *Error.
func (c *Client) StreamChat(ctx context.Context, path string, req *ChatRequest) (*http.Response, error) {
	req.ResponseMode = "streaming"

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		if readErr != nil {
			c.logger.Warn("failed to read upstream error body",
				"status", resp.StatusCode,
				"error", readErr,
			)
		}
		c.logger.Error("upstream rejected request",
			"status", resp.StatusCode,
			"path", path,
		)
		return nil, &Error{Status: resp.StatusCode, Body: body}
	}

	return resp, nil
}
