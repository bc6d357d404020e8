package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"signin-service/internal/auth/token"
	apperrors "signin-service/internal/errors"
	"signin-service/internal/session"

	"github.com/jonboulle/clockwork"
)

// unexported, collision-proof context key
type sessionContextKeyType struct{}

var sessionKey = sessionContextKeyType{}

// SessionFromContext extracts the authenticated session from context.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok && sess != nil
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return sess.UserID, true
}

type AuthMiddleware struct {
	Store  session.Store
	Tokens *token.Issuer
	clock  clockwork.Clock
}

func NewAuthMiddleware(store session.Store, tokens *token.Issuer, clock clockwork.Clock) *AuthMiddleware {
	return &AuthMiddleware{Store: store, Tokens: tokens, clock: clock}
}

// RequireAuth admits requests carrying a bearer token or session cookie
// that still maps to a live session.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.authenticate(r)
		if err != nil || sess == nil {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthMiddleware) authenticate(r *http.Request) (*session.Session, error) {
	if raw, ok := bearerToken(r); ok {
		claims, err := a.Tokens.Verify(raw)
		if err != nil {
			return nil, err
		}
		// A signed-out session revokes the tokens issued for it.
		sess, err := session.LoadActive(r.Context(), a.Store, claims.SessionID, a.clock.Now())
		if err != nil || sess == nil || sess.UserID != claims.UserID {
			return nil, err
		}
		return sess, nil
	}

	return session.LoadActive(r.Context(), a.Store, session.IDFromRequest(r), a.clock.Now())
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(apperrors.UnauthorizedError("unauthorized", nil).ToResponse())
}
