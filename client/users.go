package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type userResponse struct {
	User *User `json:"user"`
}

// Me возвращает профиль текущего пользователя
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// GetUser возвращает публичный профиль пользователя
func (c *Client) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/"+userID.String(), nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.User, nil
}
