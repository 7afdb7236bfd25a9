package models

import "time"

// Assistant is a named generation persona: a system prompt plus model
// defaults that new threads can reference.
type Assistant struct {
	ID           string                 `json:"id" db:"id"`
	UserID       string                 `json:"user_id" db:"user_id"`
	Name         string                 `json:"name" db:"name"`
	Description  *string                `json:"description,omitempty" db:"description"`
	SystemPrompt *string                `json:"system_prompt,omitempty" db:"system_prompt"`
	IconData     map[string]interface{} `json:"icon_data,omitempty" db:"icon_data"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at" db:"updated_at"`
}

// UserProfile holds per-user display settings and background context fed
// into generation prompts.
type UserProfile struct {
	UserID      string    `json:"user_id" db:"user_id"`
	DisplayName *string   `json:"display_name,omitempty" db:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Background  *string   `json:"background,omitempty" db:"background"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
