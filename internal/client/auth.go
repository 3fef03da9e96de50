package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/logger"
	"github.com/vytor/betterank/internal/models"
)

// Login exchanges credentials for a bearer token and installs it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" {
		return "", errors.NewValidationError("username", "is required")
	}
	if password == "" {
		return "", errors.NewValidationError("password", "is required")
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tok models.Token
	if err := c.doForm(ctx, "/login", form, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", errors.NewFetchError(http.MethodPost, "/login", http.StatusOK, "response carried no access_token")
	}
	c.SetToken(tok.AccessToken)
	logger.FromContext(ctx).WithPrefix("client").Info("logged in as %s", username)
	return tok.AccessToken, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := checkInput(reg); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/register", reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteMe deletes the current account and forgets the token.
func (c *Client) DeleteMe(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/me", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}
