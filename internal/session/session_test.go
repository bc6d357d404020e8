package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	getErr   error
	deleted  []string
}

func newMemoryStore(sessions ...Session) *memoryStore {
	m := &memoryStore{sessions: make(map[string]Session)}
	for _, s := range sessions {
		m.sessions[s.SessionID] = s
	}
	return m
}

func (m *memoryStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	delete(m.sessions, id)
	return nil
}

func requestWithSession(method, target, sessionID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: sessionID})
	}
	return req
}

func TestLoadActive(t *testing.T) {
	now := time.Now()
	store := newMemoryStore(
		Session{SessionID: "live", UserID: "u", ExpiresAt: now.Add(time.Hour)},
		Session{SessionID: "stale", UserID: "u", ExpiresAt: now.Add(-time.Second)},
	)
	ctx := context.Background()

	got, err := LoadActive(ctx, store, "live", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "live", got.SessionID)

	got, err = LoadActive(ctx, store, "stale", now)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []string{"stale"}, store.deleted)

	got, err = LoadActive(ctx, store, "", now)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProviderCurrentSession(t *testing.T) {
	store := newMemoryStore(Session{
		SessionID:      "sid",
		UserID:         "u-1",
		Provider:       "google",
		ProviderUserID: "g-123",
		Name:           "Ada",
		ExpiresAt:      time.Now().Add(time.Hour),
	})
	p := NewProvider(store, CookieOptions{}, "/auth", clockwork.NewRealClock())

	snap, err := p.CurrentSession(requestWithSession(http.MethodGet, "/", "sid"))
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, snap.Status)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "Ada", snap.Identity.Name)
	assert.Equal(t, "g-123", snap.Identity.ProviderUserID)

	snap, err = p.CurrentSession(requestWithSession(http.MethodGet, "/", ""))
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated(), snap)

	snap, err = p.CurrentSession(requestWithSession(http.MethodGet, "/", "unknown"))
	require.NoError(t, err)
	assert.False(t, snap.IsAuthenticated())
}

func TestProviderCurrentSessionStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("redis unavailable")
	p := NewProvider(store, CookieOptions{}, "/auth", clockwork.NewRealClock())

	snap, err := p.CurrentSession(requestWithSession(http.MethodGet, "/", "sid"))
	assert.Error(t, err)
	assert.Equal(t, StatusUnauthenticated, snap.Status)
}

func TestProviderCurrentSessionExpires(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	store := newMemoryStore(Session{
		SessionID: "sid",
		UserID:    "u-1",
		Name:      "Ada",
		ExpiresAt: clock.Now().Add(time.Hour),
	})
	p := NewProvider(store, CookieOptions{}, "/auth", clock)

	snap, err := p.CurrentSession(requestWithSession(http.MethodGet, "/", "sid"))
	require.NoError(t, err)
	assert.True(t, snap.IsAuthenticated())

	clock.Advance(time.Hour + time.Second)

	snap, err = p.CurrentSession(requestWithSession(http.MethodGet, "/", "sid"))
	require.NoError(t, err)
	assert.False(t, snap.IsAuthenticated())
	assert.Equal(t, []string{"sid"}, store.deleted)
}

func TestProviderBeginSignIn(t *testing.T) {
	p := NewProvider(newMemoryStore(), CookieOptions{}, "/auth", clockwork.NewRealClock())
	rec := httptest.NewRecorder()

	p.BeginSignIn(rec, httptest.NewRequest(http.MethodGet, "/session/signin", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestProviderEndSignOutIsIdempotent(t *testing.T) {
	store := newMemoryStore(Session{SessionID: "sid", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)})
	p := NewProvider(store, CookieOptions{Secure: true}, "/auth", clockwork.NewRealClock())

	rec := httptest.NewRecorder()
	p.EndSignOut(rec, requestWithSession(http.MethodPost, "/session/signout", "sid"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)

	snap, err := p.CurrentSession(requestWithSession(http.MethodGet, "/", "sid"))
	require.NoError(t, err)
	assert.Equal(t, StatusUnauthenticated, snap.Status)

	// Signing out again has no further effect on the store.
	rec = httptest.NewRecorder()
	p.EndSignOut(rec, requestWithSession(http.MethodPost, "/session/signout", ""))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"sid"}, store.deleted)
}

func TestSetCookieDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	expires := time.Now().Add(time.Hour)

	SetCookie(rec, "sid", expires, CookieOptions{Secure: true})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "sid", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestGenerateID(t *testing.T) {
	a, err := GenerateID()
	require.NoError(t, err)
	b, err := GenerateID()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}
