package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/astroflix-site/reistream/internal/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and an identity in whatever shape the backend chose.
// Persisting the token is the caller's concern.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. It does not establish a session.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/register", req, nil)
}

// Logout invalidates the session server-side
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// CurrentUser fetches the identity for the stored token
func (c *Client) CurrentUser(ctx context.Context) (*models.Identity, error) {
	var resp struct {
		User *models.Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/user-details", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, errors.New("user details response carried no user")
	}
	return resp.User, nil
}

// UpdateProfile edits the current user's username and email
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, "/update-user", update, nil)
}
