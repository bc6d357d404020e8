package session

import (
	"net/http"

	"signin-service/internal/logger"

	"github.com/jonboulle/clockwork"
)

// Provider answers session queries for the presenter from the session
// cookie and drives the redirect-based sign-in and sign-out flow.
type Provider struct {
	store      Store
	cookie     CookieOptions
	signInPath string
	homePath   string
	clock      clockwork.Clock
}

func NewProvider(store Store, cookie CookieOptions, signInPath string, clock clockwork.Clock) *Provider {
	return &Provider{
		store:      store,
		cookie:     cookie,
		signInPath: signInPath,
		homePath:   "/",
		clock:      clock,
	}
}

// CurrentSession reports the session of the request. On a store failure the
// snapshot is unauthenticated and the error is returned alongside it.
func (p *Provider) CurrentSession(r *http.Request) (Snapshot, error) {
	sess, err := LoadActive(r.Context(), p.store, IDFromRequest(r), p.clock.Now())
	if err != nil {
		return Unauthenticated(), err
	}
	if sess == nil {
		return Unauthenticated(), nil
	}
	return Authenticated(sess.Identity()), nil
}

// BeginSignIn hands the browser to the OAuth entry route.
func (p *Provider) BeginSignIn(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, p.signInPath, http.StatusFound)
}

// EndSignOut invalidates the session and returns the browser home.
// Calling it without a session only clears the cookie again.
func (p *Provider) EndSignOut(w http.ResponseWriter, r *http.Request) {
	if sessionID := IDFromRequest(r); sessionID != "" {
		if err := p.store.Delete(r.Context(), sessionID); err != nil {
			logger.Warn("session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
		logger.Info("signed out", map[string]any{
			"ip": r.RemoteAddr,
		})
	}

	ClearCookie(w, p.cookie)
	http.Redirect(w, r, p.homePath, http.StatusSeeOther)
}
