package ports

import (
	"context"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// AuthAPI is the authentication half of the remote defect-tracking API.
// Every call is a single exchange; there are no retries.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error)
	Register(ctx context.Context, req domain.RegistrationRequest) (*domain.RegisterResult, error)
	// Me returns domain.ErrSessionInvalid for any non-2xx answer.
	Me(ctx context.Context, token string) (*domain.UserProfile, error)
}

// DashboardAPI is the bearer-authenticated data half of the remote API.
type DashboardAPI interface {
	Projects(ctx context.Context, token string) ([]domain.Project, error)
	Defects(ctx context.Context, token string) ([]domain.Defect, error)
	DefectStatistics(ctx context.Context, token string) (*domain.DefectStatistics, error)
	Users(ctx context.Context, token string) ([]domain.UserProfile, error)
}
