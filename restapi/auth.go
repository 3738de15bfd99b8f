package restapi

import (
	"context"
	"net/http"

	"github.com/realangry/schoolweb/core/user"
)

// AuthClient maps to the /auth resource.
type AuthClient struct {
	c *Client
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// Login exchanges credentials for a principal + bearer token.
func (a *AuthClient) Login(ctx context.Context, creds user.Credentials) (LoginResult, error) {
	var res LoginResult
	if err := a.c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &res); err != nil {
		return LoginResult{}, err
	}
	return res, nil
}

// Register creates a new user. Admin-only server side; the caller's own
// session is unaffected.
func (a *AuthClient) Register(ctx context.Context, nu user.NewUser) (user.User, error) {
	var res struct {
		Data user.User `json:"data"`
	}
	if err := a.c.do(ctx, http.MethodPost, "/auth/register", nil, nu, &res); err != nil {
		return user.User{}, err
	}
	return res.Data, nil
}

// Verify re-validates the current token and returns the canonical principal.
func (a *AuthClient) Verify(ctx context.Context) (user.User, error) {
	var res struct {
		User user.User `json:"user"`
	}
	if err := a.c.do(ctx, http.MethodGet, "/auth/verify", nil, nil, &res); err != nil {
		return user.User{}, err
	}
	return res.User, nil
}
