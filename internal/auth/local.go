package auth

import (
	"context"
	"fmt"
)

// Local accepts any non-empty token and resolves it to a fixed user. It
// exists for the memory backend in local development, where no identity
// provider is running.
type Local struct {
	UserID string
}

func NewLocal(userID string) *Local {
	return &Local{UserID: userID}
}

func (l *Local) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, fmt.Errorf("empty token: %w", ErrUnauthorized)
	}
	return User{ID: l.UserID, Email: l.UserID + "@local"}, nil
}

func (l *Local) DeleteUser(ctx context.Context, userID string) error { return nil }

func (l *Local) SignOut(ctx context.Context, token string) error { return nil }

var (
	_ Verifier = (*Local)(nil)
	_ Admin    = (*Local)(nil)
)
