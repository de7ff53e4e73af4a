package internal

import (
	"context"
	"time"

	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

// Identity is what a verified session token tells us about the caller.
type Identity struct {
	UserID string
	Role   coreuser.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ContextIdentityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
