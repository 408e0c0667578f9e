package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/internal/pkg/metrics"
	"github.com/controlsys/defect-web/pkg/logger"
)

// AuthService drives login, registration, session verification and logout
// against the remote API and keeps the session store in step.
type AuthService struct {
	api   ports.AuthAPI
	store ports.SessionStore
	forms *FormValidator
	log   zerolog.Logger
}

func NewAuthService(api ports.AuthAPI, store ports.SessionStore, forms *FormValidator, log zerolog.Logger) *AuthService {
	if forms == nil {
		forms = NewFormValidator()
	}
	return &AuthService{
		api:   api,
		store: store,
		forms: forms,
		log:   logger.Component(log, "auth"),
	}
}

// Login exchanges credentials for a token and stores the session in slot
// sid. Credentials are not kept once the call returns.
func (s *AuthService) Login(ctx context.Context, sid string, creds domain.Credentials) (*domain.LoginResult, error) {
	if err := s.forms.Validate(creds); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", outcome(err)).Inc()
		return nil, err
	}

	res, err := s.api.Login(ctx, creds)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", outcome(err)).Inc()
		s.log.Info().Err(err).Str("username", creds.Username).Msg("login failed")
		return nil, err
	}

	session := domain.Session{
		Token:     res.Token,
		Identity:  res.User.Identity(),
		ExpiresAt: tokenExpiry(res.Token),
	}
	if err := s.store.Save(ctx, sid, session); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	s.log.Info().
		Int64("user_id", res.User.ID).
		Str("role", res.User.RoleCode).
		Msg("login succeeded")

	return res, nil
}

// Register validates the form locally and, only when it is valid, submits
// it. The session store is never touched: a new account must confirm its
// e-mail before it can log in.
func (s *AuthService) Register(ctx context.Context, req domain.RegistrationRequest) (*domain.RegisterResult, error) {
	if err := s.forms.Validate(req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", outcome(err)).Inc()
		return nil, err
	}

	res, err := s.api.Register(ctx, req)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", outcome(err)).Inc()
		s.log.Info().Err(err).Str("username", req.Username).Msg("registration failed")
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	s.log.Info().Str("username", req.Username).Msg("registration submitted, awaiting e-mail confirmation")
	return res, nil
}

// VerifySession asks the server who owns token. Any failure, whatever its
// cause, clears slot sid and is reported as domain.ErrSessionInvalid.
func (s *AuthService) VerifySession(ctx context.Context, sid, token string) (*domain.UserProfile, error) {
	profile, err := s.api.Me(ctx, token)
	if err == nil {
		return profile, nil
	}

	if clearErr := s.store.Clear(ctx, sid); clearErr != nil {
		s.log.Warn().Err(clearErr).Msg("failed to clear rejected session")
	}
	s.log.Debug().Err(err).Msg("session rejected")

	if errors.Is(err, domain.ErrSessionInvalid) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
}

// Logout forgets slot sid.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.store.Clear(ctx, sid); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// outcome classifies an auth error for the attempts metric.
func outcome(err error) string {
	var ve *domain.ValidationError
	var ae *domain.AuthError
	switch {
	case errors.As(err, &ve):
		return "invalid_form"
	case errors.As(err, &ae):
		return "rejected"
	case errors.Is(err, domain.ErrConnection):
		return "connection"
	default:
		return "error"
	}
}
