package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/swycle/internal/model"
)

type meResponse struct {
	UserData *model.User `json:"user_data"`
}

type loginRequest struct {
	GoogleToken string `json:"google_token"`
}

// Me handles GET /me. It returns ErrUnauthorized when there is no session.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp meResponse
	if err := c.getJSON(ctx, "/me", &resp); err != nil {
		return nil, err
	}
	if resp.UserData == nil {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "no session"}
	}
	if err := resp.UserData.Validate(); err != nil {
		return nil, fmt.Errorf("GET /me: %w: %v", ErrMalformedResponse, err)
	}
	return resp.UserData, nil
}

// Login handles POST /login. On success the session cookie is in the jar.
func (c *Client) Login(ctx context.Context, providerToken string) error {
	if providerToken == "" {
		return errors.New("provider token required")
	}
	return c.sendJSON(ctx, http.MethodPost, "/login", loginRequest{GoogleToken: providerToken}, nil)
}

// Logout handles POST /logout. The local session is dropped even when the
// request fails.
func (c *Client) Logout(ctx context.Context) error {
	defer func() {
		if err := c.jar.Clear(); err != nil {
			slog.Error("failed to clear session cookies", "error", err)
		}
	}()
	return c.sendJSON(ctx, http.MethodPost, "/logout", nil, nil)
}
