package config

const (
	// MaxThreadTitleLength is the maximum length for thread titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxThreadTitleLength = 255

	// MaxProjectNameLength is the maximum length for project names.
	MaxProjectNameLength = 255

	// MaxTagNameLength is the maximum length for tag names.
	MaxTagNameLength = 100

	// MaxAssistantNameLength is the maximum length for assistant names.
	MaxAssistantNameLength = 255

	// MaxArtifactTitleLength is the maximum length for artifact content titles.
	MaxArtifactTitleLength = 255

	// MaxQueryLength bounds the prompt text accepted by the streaming
	// proxy routes. Dify rejects larger prompts anyway; failing fast
	// here avoids a wasted upstream round trip.
	MaxQueryLength = 32768
)
