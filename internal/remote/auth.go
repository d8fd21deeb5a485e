package remote

import (
	"context"
	"net/http"

	"github.com/openshelf/storefront/internal/domain"
)

// authWire is the backend's login/register response shape.
type authWire struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (domain.AuthGrant, error) {
	body := map[string]string{"email": email, "password": password}

	var wire authWire
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, body, &wire); err != nil {
		return domain.AuthGrant{}, err
	}
	return domain.AuthGrant{Token: wire.Token, User: wire.User}, nil
}

// Register creates an account and returns the grant, as login does.
func (c *Client) Register(ctx context.Context, profile domain.RegisterProfile) (domain.AuthGrant, error) {
	var wire authWire
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", nil, profile, &wire); err != nil {
		return domain.AuthGrant{}, err
	}
	return domain.AuthGrant{Token: wire.Token, User: wire.User}, nil
}

// GetProfile fetches the authenticated shopper's profile.
func (c *Client) GetProfile(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.get(ctx, "/api/v1/auth/profile", nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfile updates the authenticated shopper's profile.
func (c *Client) UpdateProfile(ctx context.Context, user domain.User) (domain.User, error) {
	var updated domain.User
	if err := c.do(ctx, http.MethodPut, "/api/v1/auth/profile", nil, user, &updated); err != nil {
		return domain.User{}, err
	}
	return updated, nil
}
