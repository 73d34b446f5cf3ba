// Package session keeps login sessions: an opaque token mapped to a user id
// with a fixed lifetime.
package session

import (
	"context"
	"time"
)

// DefaultTTL is how long a session stays valid after login.
const DefaultTTL = 24 * time.Hour

// Store is a key/value store with per-key expiry. A missing or expired key
// yields common.ErrorNotFound from Get.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Key returns the store key for a session token.
func Key(token string) string {
	return "auth_" + token
}
