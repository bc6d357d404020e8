package presenter

import (
	"net/http"

	"signin-service/internal/logger"
	"signin-service/internal/session"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// SessionProvider reports the current session and drives the external
// sign-in and sign-out redirects.
type SessionProvider interface {
	CurrentSession(r *http.Request) (session.Snapshot, error)
	BeginSignIn(w http.ResponseWriter, r *http.Request)
	EndSignOut(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	sessions SessionProvider
	title    string
}

func NewHandler(sessions SessionProvider, title string) *Handler {
	return &Handler{sessions: sessions, title: title}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.home)
	r.GET("/session", h.widget)
	r.GET("/api/session", h.snapshot)
	r.GET(SignInPath, h.signIn)
	r.POST(SignOutPath, h.signOut)
}

func (h *Handler) home(c *gin.Context) {
	render(c, Page(h.title, h.currentSession(c), nil))
}

func (h *Handler) widget(c *gin.Context) {
	render(c, SessionButton(h.currentSession(c)))
}

func (h *Handler) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.currentSession(c))
}

func (h *Handler) signIn(c *gin.Context) {
	h.sessions.BeginSignIn(c.Writer, c.Request)
}

func (h *Handler) signOut(c *gin.Context) {
	h.sessions.EndSignOut(c.Writer, c.Request)
}

// currentSession never fails: a fetch error renders as signed out.
func (h *Handler) currentSession(c *gin.Context) session.Snapshot {
	snap, err := h.sessions.CurrentSession(c.Request)
	if err != nil {
		logger.Warn("session fetch failed", map[string]any{
			"error": err.Error(),
		})
		return session.Unauthenticated()
	}

	fields := map[string]any{"status": snap.Status}
	if snap.Identity != nil {
		fields["name"] = snap.Identity.DisplayName()
	}
	logger.Info("session snapshot", fields)

	return snap
}

func render(c *gin.Context, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}
