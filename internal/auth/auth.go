package auth

import (
	"context"
	"errors"
)

// User is the authenticated identity attached to a request.
type User struct {
	ID    string
	Email string
}

var ErrUnauthorized = errors.New("unauthorized")

// Verifier checks a bearer token against the auth provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

// Admin exposes the provider's privileged operations used by account
// deletion. Calls authenticate with the service-role key.
type Admin interface {
	DeleteUser(ctx context.Context, userID string) error
	SignOut(ctx context.Context, token string) error
}
