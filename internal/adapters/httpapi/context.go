package httpapi

import (
	"context"

	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/token"
)

type claimsKey struct{}

func WithClaims(ctx context.Context, c token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the verified token claims stored by the auth middleware.
func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(token.Claims)
	return c, ok && c.UserID != ""
}
