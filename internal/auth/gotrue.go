package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// GoTrue verifies bearer tokens against the hosted auth service and, when
// constructed with the service-role key, performs admin operations.
type GoTrue struct {
	client gotrue.Client
}

// NewGoTrue builds a client against the project's auth endpoint. key is the
// anon key for verification or the service-role key for admin use.
func NewGoTrue(projectURL, key string) *GoTrue {
	client := gotrue.New(projectRef(projectURL), key).
		WithCustomGoTrueURL(strings.TrimSuffix(projectURL, "/") + "/auth/v1")
	return &GoTrue{client: client}
}

// projectRef extracts the subdomain reference from a hosted project URL.
// Self-hosted URLs without the supabase.co suffix fall back to the host.
func projectRef(projectURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(projectURL, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	if i := strings.Index(host, "."); i > 0 {
		return host[:i]
	}
	return host
}

func (g *GoTrue) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthorized
	}
	resp, err := g.client.WithToken(token).GetUser()
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return User{
		ID:    resp.ID.String(),
		Email: resp.Email,
	}, nil
}

func (g *GoTrue) DeleteUser(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}
	if err := g.client.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id}); err != nil {
		return fmt.Errorf("delete auth user: %w", err)
	}
	return nil
}

func (g *GoTrue) SignOut(ctx context.Context, token string) error {
	if err := g.client.WithToken(token).Logout(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

var (
	_ Verifier = (*GoTrue)(nil)
	_ Admin    = (*GoTrue)(nil)
)
