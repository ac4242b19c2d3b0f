package context

import (
	"context"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, id dal.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (dal.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(dal.Identity)
	return id, ok
}

func MustIdentityFromContext(ctx context.Context) dal.Identity {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		panic("identity not found in context")
	}
	return id
}
