package client

import (
	"context"
	"net/http"

	"github.com/aditya/bakshish/internal/models"
)

// Login exchanges credentials for a token pair. It does not touch the
// session; storing the tokens is the caller's decision.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	var tokens models.TokenPair
	err := c.do(ctx, request{method: http.MethodPost, path: "users/token/", body: req}, &tokens)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	err := c.do(ctx, request{method: http.MethodPost, path: "users/", body: req, idempotent: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "users/me/", auth: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error) {
	var user models.User
	err := c.do(ctx, request{method: http.MethodPut, path: "users/update_profile/", body: req, auth: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
