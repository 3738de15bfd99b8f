package restapi

import (
	"context"
	"net/http"

	"github.com/realangry/schoolweb/core/user"
)

// UsersClient maps to the /users resource.
type UsersClient struct {
	c *Client
}

func (u *UsersClient) List(ctx context.Context) ([]user.User, error) {
	var res struct {
		Success bool        `json:"success"`
		Data    []user.User `json:"data"`
	}
	if err := u.c.do(ctx, http.MethodGet, "/users", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (u *UsersClient) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	var res struct {
		Data user.User `json:"data"`
	}
	if err := u.c.do(ctx, http.MethodPost, "/users", nil, nu, &res); err != nil {
		return user.User{}, err
	}
	return res.Data, nil
}

func (u *UsersClient) Update(ctx context.Context, id string, uu user.UpdateUser) (user.User, error) {
	var res struct {
		Data user.User `json:"data"`
	}
	if err := u.c.do(ctx, http.MethodPut, "/users/"+id, nil, uu, &res); err != nil {
		return user.User{}, err
	}
	return res.Data, nil
}

func (u *UsersClient) Delete(ctx context.Context, id string) error {
	return u.c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, nil)
}
