package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// setupSessionStore creates a miniredis instance and a store backed by it.
func setupSessionStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client, ttl), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, mr := setupSessionStore(t, time.Hour)
	ctx := context.Background()

	want := domain.Session{Token: "tok1", Identity: "bob@example.com"}
	require.NoError(t, store.Save(ctx, "abc", want))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	assert.Equal(t, "tok1", mr.HGet("session:abc", "token"))
	assert.Equal(t, "bob@example.com", mr.HGet("session:abc", "user"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))
}

func TestSessionStore_ExpiryDrivesTTL(t *testing.T) {
	store, mr := setupSessionStore(t, 24*time.Hour)
	ctx := context.Background()

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second).UTC()
	require.NoError(t, store.Save(ctx, "abc", domain.Session{Token: "t", Identity: "1", ExpiresAt: exp}))

	ttl := mr.TTL("session:abc")
	assert.True(t, ttl > 25*time.Minute && ttl <= 30*time.Minute, "ttl %v", ttl)

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.Equal(exp))

	mr.FastForward(31 * time.Minute)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSessionStore_PastHintUsesDefaultTTL(t *testing.T) {
	store, mr := setupSessionStore(t, time.Hour)
	ctx := context.Background()

	want := domain.Session{Token: "t", Identity: "1", ExpiresAt: time.Now().Add(-time.Hour).Truncate(time.Second).UTC()}
	require.NoError(t, store.Save(ctx, "abc", want))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSessionStore_SaveReplacesSlot(t *testing.T) {
	store, mr := setupSessionStore(t, time.Hour)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Save(ctx, "abc", domain.Session{Token: "old", Identity: "1", ExpiresAt: exp}))
	require.NoError(t, store.Save(ctx, "abc", domain.Session{Token: "new", Identity: "2"}))

	assert.Equal(t, "", mr.HGet("session:abc", "expires_at"))
	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Token)
	assert.True(t, got.ExpiresAt.IsZero())
}

func TestSessionStore_ClearIsIdempotent(t *testing.T) {
	store, mr := setupSessionStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", domain.Session{Token: "t", Identity: "1"}))
	require.NoError(t, store.Clear(ctx, "abc"))
	require.NoError(t, store.Clear(ctx, "abc"))

	assert.False(t, mr.Exists("session:abc"))
	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSessionStore_PartialSlotIsCleared(t *testing.T) {
	store, mr := setupSessionStore(t, time.Hour)
	ctx := context.Background()

	mr.HSet("session:abc", "token", "orphan")

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.False(t, mr.Exists("session:abc"))
}

func TestSessionStore_Ping(t *testing.T) {
	store, mr := setupSessionStore(t, time.Hour)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	byAddr, err := Connect(ctx, Config{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, byAddr.Close())

	byURL, err := Connect(ctx, Config{URL: "redis://" + mr.Addr() + "/2", Addr: "ignored:1"})
	require.NoError(t, err)
	assert.Equal(t, 2, byURL.Options().DB)
	require.NoError(t, byURL.Close())

	_, err = Connect(ctx, Config{URL: "http://nope"})
	assert.Error(t, err)
}
