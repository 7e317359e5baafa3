package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
)

// IdentityLoader resolves a user id to a stored user.
type IdentityLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Gate turns an Authorization header into the acting user.
type Gate struct {
	tokens *TokenManager
	users  IdentityLoader
}

// NewGate returns a Gate.
func NewGate(tokens *TokenManager, users IdentityLoader) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate verifies the bearer token in header and loads its user.
func (g *Gate) Authenticate(ctx context.Context, header string) (*model.User, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return nil, apperr.Unauthenticated("Not authorized, no token")
	}

	claims, err := g.tokens.ParseAccess(raw)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperr.Unauthenticated("Token expired, please log in again")
		}
		return nil, apperr.Unauthenticated("Invalid token")
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, apperr.Unauthenticated("Not authorized, user not found")
		}
		return nil, apperr.Internal("Token verification failed", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// RequireAdmin fails with Forbidden unless u is an admin.
func RequireAdmin(u *model.User) error {
	if !u.IsAdmin() {
		return apperr.Forbidden("Access denied")
	}
	return nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
