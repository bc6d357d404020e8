package handler

import (
	"context"
	"net/http"

	"signin-service/internal/auth"
	apperrors "signin-service/internal/errors"
	"signin-service/internal/login"
	"signin-service/internal/middleware"
	"signin-service/internal/session"

	"github.com/gin-gonic/gin"
)

// LoginService exchanges a verified external identity for an application session.
type LoginService interface {
	LoginWithExternalIdentity(ctx context.Context, identity *auth.Identity) (*login.ApplicationSession, error)
}

// Guards lists, in order, the handlers that run before each login route.
type Guards struct {
	Initiate []gin.HandlerFunc
	Callback []gin.HandlerFunc
}

type Handler struct {
	loginService LoginService
	guards       Guards
	cookie       session.CookieOptions
}

func NewHandler(
	loginService LoginService,
	cookie session.CookieOptions,
	guards Guards,
) *Handler {
	return &Handler{
		loginService: loginService,
		guards:       guards,
		cookie:       cookie,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/auth")
	middleware.Route(group, http.MethodGet, "", h.guards.Initiate, h.initiate)
	middleware.Route(group, http.MethodGet, "/google-redirect", h.guards.Callback, h.callback)
}

// initiate only runs if a guard lets the entry request through;
// the redirect to the consent screen is the guard's job.
func (h *Handler) initiate(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *Handler) callback(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c.Request.Context())
	if !ok {
		_ = c.Error(apperrors.InternalError("no identity attached to callback", nil))
		return
	}

	result, err := h.loginService.LoginWithExternalIdentity(c.Request.Context(), identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if result.SessionID != "" {
		session.SetCookie(c.Writer, result.SessionID, result.ExpiresAt, h.cookie)
	}

	c.JSON(http.StatusOK, result)
}
