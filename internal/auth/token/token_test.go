package token

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("k", 32)

func newTestIssuer(t *testing.T, clock clockwork.Clock) *Issuer {
	t.Helper()
	i, err := NewIssuer(testSecret, "signin-service", "signin-service", clock)
	require.NoError(t, err)
	return i
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	i := newTestIssuer(t, clockwork.NewFakeClockAt(now))

	raw, err := i.Issue(Claims{
		UserID:    "u-1",
		SessionID: "s-1",
		Name:      "Ada",
		Email:     "ada@example.com",
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	claims, err := i.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "s-1", claims.SessionID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, claims.IssuedAt.Equal(now))
	assert.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	i := newTestIssuer(t, clock)

	raw, err := i.Issue(Claims{UserID: "u-1", SessionID: "s-1", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	_, err = i.Verify(raw)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = i.Verify(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	clock := clockwork.NewFakeClock()
	other, err := NewIssuer(strings.Repeat("x", 32), "signin-service", "signin-service", clock)
	require.NoError(t, err)

	raw, err := other.Issue(Claims{UserID: "u-1", SessionID: "s-1", ExpiresAt: clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = newTestIssuer(t, clock).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	clock := clockwork.NewFakeClock()
	other, err := NewIssuer(testSecret, "signin-service", "another-app", clock)
	require.NoError(t, err)

	raw, err := other.Issue(Claims{UserID: "u-1", SessionID: "s-1", ExpiresAt: clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = newTestIssuer(t, clock).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := newTestIssuer(t, clockwork.NewFakeClock()).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRequiresFields(t *testing.T) {
	clock := clockwork.NewFakeClock()
	i := newTestIssuer(t, clock)

	_, err := i.Issue(Claims{SessionID: "s-1", ExpiresAt: clock.Now().Add(time.Hour)})
	assert.Error(t, err)

	_, err = i.Issue(Claims{UserID: "u-1", SessionID: "s-1"})
	assert.Error(t, err)
}

func TestNewIssuerValidates(t *testing.T) {
	_, err := NewIssuer("", "iss", "aud", clockwork.NewRealClock())
	assert.Error(t, err)

	_, err = NewIssuer(testSecret, "iss", "aud", nil)
	assert.Error(t, err)
}
