package apiclient

import (
	"context"
	"net/http"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

type LoginRequest struct {
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	RequiredRole *models.Role `json:"requiredRole"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the flat `{token, ...profile}` body of the auth endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	models.User
}

func (c *Client) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
