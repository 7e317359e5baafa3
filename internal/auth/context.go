package auth

import (
	"context"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

type ctxKey string

const userKey ctxKey = "user"

// WithUser attaches the acting user to ctx.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the acting user, if any.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}
