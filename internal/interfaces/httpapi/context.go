package httpapi

import (
	"context"

	"github.com/riskibarqy/toto/internal/domain/member"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p member.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (member.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(member.Principal)
	return p, ok
}
