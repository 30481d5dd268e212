package client

import (
	"context"
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/user"
)

func (c *Client) Login(ctx context.Context, username, password string) (*auth.LoginResponse, error) {
	var resp auth.LoginResponse
	if err := c.Do(ctx, http.MethodPost, "/api/login", auth.LoginDTO{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Logout revokes the token server side and forgets it locally, even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	err := c.Do(ctx, http.MethodPost, "/api/logout", nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (*auth.User, error) {
	var u auth.User
	if err := c.Do(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UsersResource differs from Resource in that creation carries a password.
type UsersResource struct {
	c *Client
}

func (c *Client) Users() *UsersResource { return &UsersResource{c: c} }

func (r *UsersResource) List(ctx context.Context) ([]user.User, error) {
	var out []user.User
	if err := r.c.Do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersResource) Create(ctx context.Context, dto user.CreateUserDTO) (user.User, error) {
	var out user.User
	err := r.c.Do(ctx, http.MethodPost, "/api/users", dto, &out)
	return out, err
}

func (r *UsersResource) Update(ctx context.Context, u user.User) (user.User, error) {
	var out user.User
	err := r.c.Do(ctx, http.MethodPut, "/api/users"+seg(u.Username), u, &out)
	return out, err
}

func (r *UsersResource) Delete(ctx context.Context, u user.User) error {
	return r.c.Do(ctx, http.MethodDelete, "/api/users"+seg(u.Username), nil, nil)
}

func (r *UsersResource) ChangePassword(ctx context.Context, username string, dto user.ChangePasswordDTO) error {
	return r.c.Do(ctx, http.MethodPut, "/api/users"+seg(username)+"/password", dto, nil)
}

func (c *Client) InitDB(ctx context.Context) (*user.InitDBResponse, error) {
	var out user.InitDBResponse
	if err := c.Do(ctx, http.MethodPost, "/api/init-db", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
