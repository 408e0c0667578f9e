package ports

import (
	"context"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// SessionStore persists one session per browser slot. A slot is addressed by
// the opaque sid the browser carries; it plays the part of the browser's
// local storage.
type SessionStore interface {
	// Save overwrites whatever the slot held before.
	Save(ctx context.Context, sid string, session domain.Session) error
	// Load returns domain.ErrNoSession unless both token and identity are
	// present. A partially populated slot is cleared before returning.
	Load(ctx context.Context, sid string) (*domain.Session, error)
	// Clear removes every field of the slot. Clearing an empty slot is not
	// an error.
	Clear(ctx context.Context, sid string) error
}

// HealthChecker is implemented by session stores backed by an external
// service.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
