package auth

import "nova/internal/domain/models"

// Verifier authenticates an incoming bearer token and produces claims.
// Two implementations exist: Supabase JWKS verification for real
// deployments and a static verifier for local development. The choice is
// made once at startup; nothing downstream branches on auth mode.
type Verifier interface {
	// VerifyToken validates a bearer token and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an
	// invalid signature.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP
	// connections for JWKS refresh).
	Close() error
}
