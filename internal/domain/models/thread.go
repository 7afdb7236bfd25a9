package models

import "time"

// Message type discriminators, matching the LangChain role vocabulary
// the frontend speaks.
const (
	MessageTypeHuman  = "human"
	MessageTypeAI     = "ai"
	MessageTypeSystem = "system"
)

// Thread represents one persisted conversation session.
type Thread struct {
	ID          string                 `json:"id" db:"id"`
	UserID      string                 `json:"user_id" db:"user_id"`
	AssistantID *string                `json:"assistant_id,omitempty" db:"assistant_id"`
	Title       string                 `json:"title" db:"title"`
	ModelName   string                 `json:"model_name" db:"model_name"`
	ModelConfig map[string]interface{} `json:"model_config,omitempty" db:"model_config"`
	// Metadata carries free-form client state, including the upstream
	// conversation_id used to resume a Dify conversation.
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// Message represents one turn in a thread. The ToolCalls and *Metadata
// fields are opaque pass-through payloads preserved verbatim from the
// upstream message format.
type Message struct {
	ID               string                   `json:"id" db:"id"`
	ThreadID         string                   `json:"thread_id" db:"thread_id"`
	Type             string                   `json:"type" db:"type"` // human | ai | system
	Content          string                   `json:"content" db:"content"`
	SequenceNumber   int                      `json:"sequence_number" db:"sequence_number"`
	ToolCalls        []map[string]interface{} `json:"tool_calls,omitempty" db:"tool_calls"`
	AdditionalKwargs map[string]interface{}   `json:"additional_kwargs,omitempty" db:"additional_kwargs"`
	ResponseMetadata map[string]interface{}   `json:"response_metadata,omitempty" db:"response_metadata"`
	UsageMetadata    map[string]interface{}   `json:"usage_metadata,omitempty" db:"usage_metadata"`
	CreatedAt        time.Time                `json:"created_at" db:"created_at"`
}
