package shared

import "context"

type actorContextKey struct{}

// ContextWithActor stores the authenticated user id in context.
// Identity is established by an upstream collaborator; this package only
// carries the trusted id.
func ContextWithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorContextKey{}, userID)
}

// ActorFromContext extracts the user id from context, zero when absent.
func ActorFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(actorContextKey{}).(int64)
	return id
}
