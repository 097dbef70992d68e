package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/token"
)

type stubVerifier struct {
	want   string
	claims token.Claims
}

func (v stubVerifier) VerifyToken(_ context.Context, raw string) (token.Claims, error) {
	if raw != v.want {
		return token.Claims{}, token.ErrUnauthorized
	}
	return v.claims, nil
}

func newProbe(t *testing.T) http.Handler {
	t.Helper()
	mw := NewAuthMiddleware(stubVerifier{want: "good", claims: token.Claims{UserID: "u-1", Email: "a@example.com"}})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusInternalServerError, "MISSING_CLAIMS", "claims missing from context", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"userId": c.UserID})
	}))
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/trip", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			newProbe(t).ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want=%d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				got := decode[errorEnvelope](t, rr)
				if got.Error.Code != "UNAUTHORIZED" {
					t.Fatalf("code=%q", got.Error.Code)
				}
			}
		})
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	t.Parallel()

	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatalf("expected no claims")
	}
	if _, ok := ClaimsFromContext(WithClaims(context.Background(), token.Claims{})); ok {
		t.Fatalf("claims without a user id must not count")
	}
}
