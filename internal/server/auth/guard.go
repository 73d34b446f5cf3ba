// Package auth resolves session tokens to users and hashes passwords.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
	"github.com/dmitrijs2005/filesmanager/internal/server/session"
	"github.com/google/uuid"
)

// Guard maps a session token to the user it was issued for.
type Guard struct {
	sessions session.Store
	users    users.Repository
}

func NewGuard(sessions session.Store, users users.Repository) *Guard {
	return &Guard{sessions: sessions, users: users}
}

// ResolveUser returns the user behind token. An empty or unknown token, or a
// session pointing to a vanished user, yields common.ErrorUnauthorized;
// store failures yield common.ErrorInternal.
func (g *Guard) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	userID, err := g.sessions.Get(ctx, session.Key(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("session lookup: %v: %w", err, common.ErrorInternal)
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("user lookup: %v: %w", err, common.ErrorInternal)
	}

	return user, nil
}

// OptionalUser is ResolveUser for endpoints open to anonymous callers: any
// failure to resolve results in a nil user.
func (g *Guard) OptionalUser(ctx context.Context, token string) *models.User {
	user, err := g.ResolveUser(ctx, token)
	if err != nil {
		return nil
	}
	return user
}

// NewToken returns a fresh opaque session token.
func NewToken() string {
	return uuid.NewString()
}

type ctxKey string

const userKey ctxKey = "user"

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user stored by ContextWithUser, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
