// Package memory holds process-local implementations of the storage ports.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/controlsys/defect-web/internal/core/domain"
)

const (
	defaultSessionTTL = 24 * time.Hour

	fieldToken     = "token"
	fieldUser      = "user"
	fieldExpiresAt = "expires_at"
)

type slot struct {
	fields   map[string]string
	deadline time.Time
}

// SessionStore keeps each slot as a small field map, mirroring the
// key/value layout of browser storage. Slots do not survive a restart.
type SessionStore struct {
	mu    sync.Mutex
	slots map[string]slot
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionStore returns an empty store. ttl bounds slots whose token
// carries no future expiry; a non-positive value selects the default.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		slots: make(map[string]slot),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, sid string, session domain.Session) error {
	fields := map[string]string{
		fieldToken: session.Token,
		fieldUser:  session.Identity,
	}
	if !session.ExpiresAt.IsZero() {
		fields[fieldExpiresAt] = strconv.FormatInt(session.ExpiresAt.Unix(), 10)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.slots[sid] = slot{fields: fields, deadline: now.Add(session.SlotTTL(now, s.ttl))}
	return nil
}

func (s *SessionStore) Load(_ context.Context, sid string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[sid]
	if !ok {
		return nil, domain.ErrNoSession
	}
	if !s.now().Before(sl.deadline) {
		delete(s.slots, sid)
		return nil, domain.ErrNoSession
	}

	session := domain.Session{
		Token:    sl.fields[fieldToken],
		Identity: sl.fields[fieldUser],
	}
	if raw := sl.fields[fieldExpiresAt]; raw != "" {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			session.ExpiresAt = time.Unix(ts, 0).UTC()
		}
	}

	if !session.Complete() {
		delete(s.slots, sid)
		return nil, domain.ErrNoSession
	}
	return &session, nil
}

func (s *SessionStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, sid)
	return nil
}

// Len reports the number of occupied slots.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
