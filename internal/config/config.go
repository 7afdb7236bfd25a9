package config

import (
	"os"
)

// Auth strategy names accepted by AUTH_MODE.
const (
	AuthModeSupabase = "supabase"
	AuthModeStatic   = "static"
)

type Config struct {
	Port        string
	Environment string

	// Supabase
	SupabaseURL     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	TablePrefix     string

	// Auth strategy: "supabase" verifies JWTs against the Supabase JWKS,
	// "static" accepts every request as StaticUserID (local development only).
	AuthMode     string
	StaticUserID string

	CORSOrigins string

	// Upstream providers. Each proxied route is bound to one Dify
	// application, and each application has its own bearer credential.
	DifyBaseURL      string
	AgentBaseURL     string
	DifyArtifactKey  string
	DifyFollowupKey  string
	DifyHighlightKey string
	AgentAPIKey      string

	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := getEnv("SUPABASE_URL", "")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: supabaseURL + "/auth/v1/.well-known/jwks.json",
		TablePrefix:     getTablePrefix(env),
		AuthMode:        getEnv("AUTH_MODE", AuthModeSupabase),
		StaticUserID:    getEnv("STATIC_USER_ID", "00000000-0000-0000-0000-000000000000"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),

		DifyBaseURL:      getEnv("DIFY_BASE_URL", "https://api.dify.ai/v1"),
		AgentBaseURL:     getEnv("AGENT_BASE_URL", ""),
		DifyArtifactKey:  getEnv("DIFY_ARTIFACT_APP_KEY", ""),
		DifyFollowupKey:  getEnv("DIFY_FOLLOWUP_APP_KEY", ""),
		DifyHighlightKey: getEnv("DIFY_HIGHLIGHT_APP_KEY", ""),
		AgentAPIKey:      getEnv("AGENT_API_KEY", ""),

		// Default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
