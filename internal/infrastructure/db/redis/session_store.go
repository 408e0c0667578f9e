package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/controlsys/defect-web/internal/core/domain"
)

const (
	defaultSessionTTL = 24 * time.Hour

	fieldToken     = "token"
	fieldUser      = "user"
	fieldExpiresAt = "expires_at"
)

// SessionStore keeps one hash per browser slot.
// Key format: session:<sid>, fields token, user and optionally expires_at.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps client. ttl bounds slots whose token carries no
// expiry; a non-positive value selects defaultSessionTTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Save replaces the slot in one MULTI/EXEC so no reader sees a mix of the
// old and new session.
func (s *SessionStore) Save(ctx context.Context, sid string, session domain.Session) error {
	key := s.key(sid)
	fields := map[string]any{
		fieldToken: session.Token,
		fieldUser:  session.Identity,
	}
	if !session.ExpiresAt.IsZero() {
		fields[fieldExpiresAt] = strconv.FormatInt(session.ExpiresAt.Unix(), 10)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, session.SlotTTL(time.Now(), s.ttl))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, sid string) (*domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sid)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNoSession
	}

	session := domain.Session{
		Token:    fields[fieldToken],
		Identity: fields[fieldUser],
	}
	if raw := fields[fieldExpiresAt]; raw != "" {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			session.ExpiresAt = time.Unix(ts, 0).UTC()
		}
	}

	if !session.Complete() {
		if err := s.Clear(ctx, sid); err != nil {
			return nil, err
		}
		return nil, domain.ErrNoSession
	}
	return &session, nil
}

func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(sid string) string {
	return "session:" + sid
}
