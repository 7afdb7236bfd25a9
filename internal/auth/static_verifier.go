package auth

import (
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"nova/internal/domain/models"
)

// StaticVerifier accepts every request as a fixed user. It exists so the
// frontend can be developed against a local backend without a Supabase
// project. Never enable it in production.
type StaticVerifier struct {
	userID string
}

// NewStaticVerifier creates a verifier that ignores the token and always
// returns claims for userID.
func NewStaticVerifier(userID string, logger *slog.Logger) Verifier {
	logger.Warn("STATIC AUTH MODE: all requests authenticated as fixed user (never use in production!)",
		"user_id", userID,
	)
	return &StaticVerifier{userID: userID}
}

// VerifyToken returns fixed claims regardless of the token, including an
// empty one.
func (v *StaticVerifier) VerifyToken(tokenString string) (*models.SupabaseClaims, error) {
	return &models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: v.userID},
		Role:             "authenticated",
	}, nil
}

// Close is a no-op.
func (v *StaticVerifier) Close() error {
	return nil
}
