package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/controlsys/defect-web/internal/core/domain"
)

const (
	sessionCollection = "sessions"
	defaultSessionTTL = 24 * time.Hour
)

// SessionStore keeps one document per browser slot, keyed by sid. A TTL
// index on purge_at lets the server reap abandoned slots.
type SessionStore struct {
	coll *mongo.Collection
	ttl  time.Duration
	now  func() time.Time
}

func NewSessionStore(db *mongo.Database, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		coll: db.Collection(sessionCollection),
		ttl:  ttl,
		now:  time.Now,
	}
}

type sessionDoc struct {
	SID       string     `bson:"_id"`
	Token     string     `bson:"token,omitempty"`
	User      string     `bson:"user,omitempty"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	PurgeAt   time.Time  `bson:"purge_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// EnsureIndexes creates the TTL index. Safe to call on every start.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "purge_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("sessions_purge_ttl"),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}

func (s *SessionStore) Save(ctx context.Context, sid string, session domain.Session) error {
	now := s.now().UTC()
	doc := sessionDoc{
		SID:       sid,
		Token:     session.Token,
		User:      session.Identity,
		PurgeAt:   now.Add(session.SlotTTL(now, s.ttl)),
		UpdatedAt: now,
	}
	if !session.ExpiresAt.IsZero() {
		exp := session.ExpiresAt.UTC()
		doc.ExpiresAt = &exp
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sid}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, sid string) (*domain.Session, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": sid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	session := domain.Session{
		Token:    doc.Token,
		Identity: doc.User,
	}
	if doc.ExpiresAt != nil {
		session.ExpiresAt = doc.ExpiresAt.UTC()
	}

	// The TTL monitor runs about once a minute, so the purge time is checked here too.
	purged := !doc.PurgeAt.IsZero() && !s.now().Before(doc.PurgeAt)
	if !session.Complete() || purged {
		if err := s.Clear(ctx, sid); err != nil {
			return nil, err
		}
		return nil, domain.ErrNoSession
	}
	return &session, nil
}

func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": sid}); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
