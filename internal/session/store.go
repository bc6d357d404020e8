package session

import (
	"context"
	"time"

	"signin-service/internal/auth"
)

// Session represents an authenticated user session.
// It carries the identity facts the presenter needs, never provider tokens.
type Session struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"` // references users.id
	Provider       string    `json:"provider"`
	ProviderUserID string    `json:"provider_user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"` // absolute expiry time
}

// Identity returns the external identity this session was created from.
func (s *Session) Identity() *auth.Identity {
	return &auth.Identity{
		Provider:       s.Provider,
		ProviderUserID: s.ProviderUserID,
		Name:           s.Name,
		Email:          s.Email,
	}
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) for an unknown session.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// LoadActive returns the session if it exists and has not expired.
// Expired sessions are deleted best-effort and reported as absent.
func LoadActive(ctx context.Context, store Store, sessionID string, now time.Time) (*Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := store.Get(ctx, sessionID)
	if err != nil || sess == nil {
		return nil, err
	}

	if now.After(sess.ExpiresAt) {
		_ = store.Delete(ctx, sessionID)
		return nil, nil
	}

	return sess, nil
}
