package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/controlsys/defect-web/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string              `json:"access_token"`
	User        *domain.UserProfile `json:"user"`
}

// registerRequest is the wire form of a registration. The confirmation
// field is deliberately absent.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Login posts credentials to /auth/login.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	status, data, err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &domain.AuthError{Status: status, Detail: detail(data)}
	}

	var out loginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, malformed("login", err)
	}
	if out.AccessToken == "" || out.User == nil || out.User.Identity() == "" {
		return nil, malformed("login", errors.New("missing access_token or user"))
	}

	return &domain.LoginResult{Token: out.AccessToken, User: *out.User}, nil
}

// Register posts the registration form to /auth/register.
func (c *Client) Register(ctx context.Context, req domain.RegistrationRequest) (*domain.RegisterResult, error) {
	status, data, err := c.do(ctx, "register", http.MethodPost, "/auth/register", "", registerRequest{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &domain.AuthError{Status: status, Detail: detail(data)}
	}

	user, err := decodeUser(data)
	if err != nil {
		return nil, malformed("register", err)
	}
	return &domain.RegisterResult{Detail: detail(data), User: user}, nil
}

// Me resolves the owner of token via GET /users/me. Any non-2xx answer is
// domain.ErrSessionInvalid; the status code is not interpreted further.
func (c *Client) Me(ctx context.Context, token string) (*domain.UserProfile, error) {
	status, data, err := c.do(ctx, "me", http.MethodGet, "/users/me", token, nil)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, fmt.Errorf("me: status %d: %w", status, domain.ErrSessionInvalid)
	}

	user, err := decodeUser(data)
	if err != nil {
		return nil, malformed("me", err)
	}
	if user == nil || user.Identity() == "" {
		return nil, malformed("me", errors.New("missing user identity"))
	}
	return user, nil
}
