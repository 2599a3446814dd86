package auth

import (
	"context"

	"yatube/app/models"
)

type contextKey struct{}

// WithUser returns a copy of ctx carrying the logged in user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the logged in user, or nil for anonymous requests
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(contextKey{}).(*models.User)
	return user
}
