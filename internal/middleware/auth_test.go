package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"nova/internal/auth"
	"nova/internal/domain/models"
	"nova/internal/httputil"
)

type rejectingVerifier struct{}

func (v *rejectingVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	if token == "good-token" {
		return &models.SupabaseClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
			Role:             "authenticated",
		}, nil
	}
	return nil, errors.New("invalid token")
}

func (v *rejectingVerifier) Close() error { return nil }

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid bearer token",
			header:     "Bearer good-token",
			wantStatus: http.StatusOK,
			wantUserID: "user-42",
		},
		{
			name:       "case-insensitive scheme",
			header:     "bearer good-token",
			wantStatus: http.StatusOK,
			wantUserID: "user-42",
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic good-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			header:     "Bearer bad-token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID = httputil.GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Auth(&rejectingVerifier{})(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != tt.wantUserID {
				t.Errorf("user id = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestStaticVerifierAcceptsEverything(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := auth.NewStaticVerifier("dev-user", logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := httputil.GetUserID(r); got != "dev-user" {
			t.Errorf("user id = %q, want dev-user", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	// No Authorization header at all
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	rec := httptest.NewRecorder()

	Auth(verifier)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
