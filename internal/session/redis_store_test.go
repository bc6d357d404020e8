package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	return newTestRedisStoreWithClock(t, clockwork.NewRealClock())
}

func newTestRedisStoreWithClock(t *testing.T, clock clockwork.Clock) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, clock), mr
}

func testSession(expiresAt time.Time) Session {
	return Session{
		SessionID:      "sid-1",
		UserID:         "user-1",
		Provider:       "google",
		ProviderUserID: "g-123",
		Name:           "Ada",
		Email:          "ada@example.com",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		ExpiresAt:      expiresAt.UTC().Truncate(time.Second),
	}
}

func TestRedisStoreCreateGetDelete(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	sess := testSession(time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, sess))

	assert.True(t, mr.Exists("session:sid-1"))
	ttl := mr.TTL("session:sid-1")
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess, *got)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	got, err = store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreGetUnknown(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreCreateRejectsInvalid(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	missingUser := testSession(time.Now().Add(time.Hour))
	missingUser.UserID = ""
	assert.Error(t, store.Create(ctx, missingUser))

	expired := testSession(time.Now().Add(-time.Minute))
	assert.Error(t, store.Create(ctx, expired))
}

func TestRedisStoreTTLFollowsClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	store, mr := newTestRedisStoreWithClock(t, clock)
	ctx := context.Background()

	// Wall-clock time is far past this expiry; only the store's clock counts.
	require.NoError(t, store.Create(ctx, testSession(clock.Now().Add(30*time.Minute))))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:sid-1"))

	clock.Advance(time.Hour)
	assert.Error(t, store.Create(ctx, testSession(clock.Now().Add(-time.Second))))
}

func TestRedisStoreExpiresWithTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession(time.Now().Add(time.Minute))))
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreGetCorruptPayload(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
}
