package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"signin-service/internal/auth"
	"signin-service/internal/auth/provider"
	apperrors "signin-service/internal/errors"
	"signin-service/internal/logger"

	"github.com/gin-gonic/gin"
)

const exchangeTimeout = 10 * time.Second

// OAuthGuard runs the provider handshake in front of the login routes.
// Begin guards the entry route and always sends the browser to the consent
// screen. Complete guards the callback route: it verifies the handshake and
// continues with the identity in the request context.
type OAuthGuard struct {
	provider     provider.OAuthProvider
	cookieSecure bool
}

func NewOAuthGuard(p provider.OAuthProvider, cookieSecure bool) *OAuthGuard {
	return &OAuthGuard{
		provider:     p,
		cookieSecure: cookieSecure,
	}
}

// Begin starts a fresh handshake. A code on the entry route is ignored.
func (g *OAuthGuard) Begin(c *gin.Context) {
	g.begin(c)
}

// Complete finishes the handshake on the callback route. Without a code
// there is nothing to verify, so the handshake starts over.
func (g *OAuthGuard) Complete(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": g.provider.Name(),
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		abortWithError(c, apperrors.UnauthorizedError("oauth provider rejected sign-in", nil).
			WithField("oauth_error", errParam))
		return
	}

	code := c.Query("code")
	if code == "" {
		g.begin(c)
		return
	}

	g.complete(c, code)
}

func (g *OAuthGuard) begin(c *gin.Context) {
	state, err := generateState(c, g.cookieSecure)
	if err != nil {
		abortWithError(c, apperrors.InternalError("failed to start oauth flow", err))
		return
	}
	_, challenge, err := generatePKCE(c, g.cookieSecure)
	if err != nil {
		abortWithError(c, apperrors.InternalError("failed to start oauth flow", err))
		return
	}

	c.Redirect(http.StatusFound, g.provider.AuthCodeURL(state, challenge))
	c.Abort()
}

func (g *OAuthGuard) complete(c *gin.Context, code string) {
	if !validateState(c) {
		abortWithError(c, apperrors.UnauthorizedError("invalid state", nil))
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		abortWithError(c, apperrors.UnauthorizedError("missing pkce verifier", nil))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), exchangeTimeout)
	defer cancel()

	identity, err := g.provider.ExchangeCode(ctx, code, codeVerifier)
	if errors.Is(err, context.DeadlineExceeded) {
		abortWithError(c, apperrors.ExternalError("identity provider unavailable", err).
			WithField("provider", g.provider.Name()))
		return
	}
	if err != nil {
		abortWithError(c, apperrors.UnauthorizedError("authentication failed", err).
			WithField("provider", g.provider.Name()))
		return
	}

	clearHandshakeCookie(c, stateCookieName, g.cookieSecure)
	clearHandshakeCookie(c, pkceCookieName, g.cookieSecure)

	if identity != nil && identity.Provider == "" {
		identity.Provider = g.provider.Name()
	}
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
	c.Next()
}
