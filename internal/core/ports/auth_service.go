package ports

import (
	"context"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// AuthService is the session lifecycle as seen by the HTTP layer.
type AuthService interface {
	Login(ctx context.Context, sid string, creds domain.Credentials) (*domain.LoginResult, error)
	Register(ctx context.Context, req domain.RegistrationRequest) (*domain.RegisterResult, error)
	VerifySession(ctx context.Context, sid, token string) (*domain.UserProfile, error)
	Logout(ctx context.Context, sid string) error
}
