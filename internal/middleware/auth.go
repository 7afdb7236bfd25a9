package middleware

import (
	"net/http"
	"strings"

	"nova/internal/auth"
	"nova/internal/httputil"
)

// Auth authenticates every request through the configured verifier and
// stores the user ID in the request context. The verifier strategy
// (Supabase JWKS or static dev user) is chosen once at startup; this
// middleware is identical in both modes.
func Auth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or missing credentials")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
// Returns empty string when the header is absent or malformed; the
// verifier decides whether that is acceptable.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
