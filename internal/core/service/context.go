package service

import (
	"context"

	"github.com/yndnr/playgate/internal/core/domain"
)

type claimsKey struct{}

// WithClaims returns a context carrying verified claims.
func WithClaims(ctx context.Context, c *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*domain.Claims)
	return c, ok && c != nil
}
