// Package login exchanges a verified external identity for an application session.
package login

import (
	"context"
	"errors"
	"time"

	"signin-service/internal/auth"
	"signin-service/internal/auth/resolver"
	"signin-service/internal/auth/token"
	apperrors "signin-service/internal/errors"
	"signin-service/internal/logger"
	"signin-service/internal/session"

	"github.com/jonboulle/clockwork"
)

// ApplicationSession is the result of a successful login.
type ApplicationSession struct {
	SessionID   string         `json:"-"` // travels only in the session cookie
	UserID      string         `json:"user_id"`
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Identity    *auth.Identity `json:"identity"`
}

// DefaultProvider names the provider of identities that arrive without one.
const DefaultProvider = "google"

type Service struct {
	provider string
	resolver resolver.Resolver
	sessions session.Store
	tokens   *token.Issuer
	ttl      time.Duration
	clock    clockwork.Clock
}

func NewService(
	resolver resolver.Resolver,
	sessions session.Store,
	tokens *token.Issuer,
	ttl time.Duration,
	clock clockwork.Clock,
	opts ...Option,
) (*Service, error) {
	if resolver == nil || sessions == nil || tokens == nil || clock == nil {
		return nil, errors.New("login: resolver, session store, token issuer and clock are required")
	}
	if ttl <= 0 {
		return nil, errors.New("login: session ttl must be positive")
	}
	s := &Service{
		provider: DefaultProvider,
		resolver: resolver,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		clock:    clock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type Option func(*Service)

// WithProvider sets the provider recorded for identities that carry none,
// normally the provider behind the login route.
func WithProvider(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.provider = name
		}
	}
}

// LoginWithExternalIdentity maps the identity to a user, opens a session
// and issues an access token bound to it. Each call opens a new session.
func (s *Service) LoginWithExternalIdentity(
	ctx context.Context,
	external *auth.Identity,
) (*ApplicationSession, error) {

	if err := external.Validate(); err != nil {
		return nil, err
	}

	identity := *external
	if identity.Provider == "" {
		identity.Provider = s.provider
	}

	userID, err := s.resolver.Resolve(ctx, &identity)
	if errors.Is(err, resolver.ErrConflict) {
		return nil, apperrors.ConflictError("sign-in raced with another login, retry", err).
			WithField("provider", identity.Provider)
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to resolve user", err).
			WithField("provider", identity.Provider)
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		return nil, apperrors.InternalError("failed to create session", err)
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	sess := session.Session{
		SessionID:      sessionID,
		UserID:         userID,
		Provider:       identity.Provider,
		ProviderUserID: identity.ProviderUserID,
		Name:           identity.DisplayName(),
		Email:          identity.Email,
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, apperrors.InternalError("failed to persist session", err)
	}

	accessToken, err := s.tokens.Issue(token.Claims{
		UserID:    userID,
		SessionID: sessionID,
		Name:      sess.Name,
		Email:     sess.Email,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, apperrors.InternalError("failed to issue access token", err)
	}

	logger.Info("login succeeded", map[string]any{
		"user_id":  userID,
		"provider": identity.Provider,
	})

	return &ApplicationSession{
		SessionID:   sessionID,
		UserID:      userID,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Identity:    &identity,
	}, nil
}
