package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/internal/pkg/metrics"
	"github.com/controlsys/defect-web/pkg/logger"
)

// EntryPath is the unauthenticated entry view.
const EntryPath = "/"

// GuardState is the lifecycle state of a PageCheck.
type GuardState int

const (
	StateUnknown GuardState = iota
	StateChecking
	StateAuthenticated
	StateUnauthenticated
)

func (s GuardState) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionVerifier confirms a stored token with the server.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sid, token string) (*domain.UserProfile, error)
}

// Guard gates protected views on a valid session.
type Guard struct {
	store    ports.SessionStore
	verifier SessionVerifier
	log      zerolog.Logger
}

func NewGuard(store ports.SessionStore, verifier SessionVerifier, log zerolog.Logger) *Guard {
	return &Guard{
		store:    store,
		verifier: verifier,
		log:      logger.Component(log, "guard"),
	}
}

// NewCheck prepares the check for one page load of slot sid. redirect is
// called with EntryPath when the check ends unauthenticated; it may be nil.
func (g *Guard) NewCheck(sid string, redirect func(path string)) *PageCheck {
	return &PageCheck{guard: g, sid: sid, redirect: redirect}
}

// PageCheck is a single load-time session check. It runs at most once and
// never re-polls; a 401 from a later data call is the caller's to handle.
// A PageCheck belongs to one request and is not safe for concurrent use.
type PageCheck struct {
	guard    *Guard
	sid      string
	redirect func(path string)

	state   GuardState
	session *domain.Session
	profile *domain.UserProfile
	err     error
}

// Run performs the check and returns the terminal state. Later calls return
// the same state without touching the store or the server.
func (c *PageCheck) Run(ctx context.Context) GuardState {
	if c.state != StateUnknown {
		return c.state
	}
	c.state = StateChecking

	session, err := c.guard.store.Load(ctx, c.sid)
	if err != nil {
		if !errors.Is(err, domain.ErrNoSession) {
			c.guard.log.Error().Err(err).Msg("session store unavailable")
		}
		c.fail(ctx, err)
		return c.state
	}

	profile, err := c.guard.verifier.VerifySession(ctx, c.sid, session.Token)
	if err != nil {
		c.fail(ctx, err)
		return c.state
	}

	c.session = session
	c.profile = profile
	c.state = StateAuthenticated
	metrics.SessionChecksTotal.WithLabelValues(c.state.String()).Inc()
	return c.state
}

func (c *PageCheck) fail(ctx context.Context, cause error) {
	c.err = cause
	if err := c.guard.store.Clear(ctx, c.sid); err != nil {
		c.guard.log.Warn().Err(err).Msg("failed to clear session")
	}
	c.state = StateUnauthenticated
	metrics.SessionChecksTotal.WithLabelValues(c.state.String()).Inc()

	if c.redirect != nil {
		c.redirect(EntryPath)
	}
}

func (c *PageCheck) State() GuardState { return c.state }

// SID returns the slot this check ran against.
func (c *PageCheck) SID() string { return c.sid }

// Err is the reason the check ended unauthenticated.
func (c *PageCheck) Err() error { return c.err }

// Profile is nil unless the check is authenticated.
func (c *PageCheck) Profile() *domain.UserProfile {
	if c.state != StateAuthenticated {
		return nil
	}
	return c.profile
}

// Token is empty unless the check is authenticated.
func (c *PageCheck) Token() string {
	if c.state != StateAuthenticated {
		return ""
	}
	return c.session.Token
}
