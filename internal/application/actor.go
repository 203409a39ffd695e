package application

import (
	"context"

	"golang.org/x/text/language"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
)

type actorKey struct{}

// Actor is the request-scoped principal and locale an operation runs under.
type Actor struct {
	User   *entity.User
	Locale language.Tag
}

// HasIdentity reports whether the actor is a persisted user rather than an
// anonymous visitor.
func (a Actor) HasIdentity() bool {
	return a.User.HasIdentity()
}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor in ctx, or an anonymous English actor.
func ActorFromContext(ctx context.Context) Actor {
	if ctx != nil {
		if a, ok := ctx.Value(actorKey{}).(Actor); ok {
			return a
		}
	}
	return Actor{Locale: language.English}
}
