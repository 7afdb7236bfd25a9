package models

import "time"

// Artifact content types.
const (
	ArtifactTypeText = "text"
	ArtifactTypeCode = "code"
)

// Artifact represents one versioned document produced during a thread.
// CurrentIndex points at the active ArtifactContent version.
type Artifact struct {
	ID           string    `json:"id" db:"id"`
	ThreadID     string    `json:"thread_id" db:"thread_id"`
	CurrentIndex int       `json:"current_index" db:"current_index"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ArtifactContent is one immutable version of an artifact. Index is
// assigned server-side, strictly increasing per artifact, never reused.
// Text versions fill FullMarkdown; code versions fill Code and Language.
type ArtifactContent struct {
	ID           string    `json:"id" db:"id"`
	ArtifactID   string    `json:"artifact_id" db:"artifact_id"`
	Index        int       `json:"index" db:"index"`
	Type         string    `json:"type" db:"type"` // text | code
	Title        string    `json:"title" db:"title"`
	FullMarkdown *string   `json:"full_markdown,omitempty" db:"full_markdown"`
	Code         *string   `json:"code,omitempty" db:"code"`
	Language     *string   `json:"language,omitempty" db:"language"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
