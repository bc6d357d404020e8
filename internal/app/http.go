package app

import (
	"context"
	"net/http"

	"signin-service/internal/auth/handler"
	"signin-service/internal/auth/provider"
	"signin-service/internal/auth/provider/google"
	"signin-service/internal/auth/resolver"
	"signin-service/internal/auth/token"
	"signin-service/internal/config"
	apperrors "signin-service/internal/errors"
	"signin-service/internal/login"
	"signin-service/internal/middleware"
	"signin-service/internal/presenter"
	"signin-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

const (
	signInPath = "/auth"
	pageTitle  = "Sign in"
)

type dependencies struct {
	provider provider.OAuthProvider
	resolver resolver.Resolver
	sessions session.Store
	clock    clockwork.Clock
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleCallbackURL,
	)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	clock := clockwork.NewRealClock()
	router, err := newRouter(cfg, dependencies{
		provider: googleProvider,
		resolver: resolver.NewDBResolver(infra.DB),
		sessions: session.NewRedisStore(infra.Redis.Client, clock),
		clock:    clock,
	})
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func newRouter(cfg config.Config, deps dependencies) (*gin.Engine, error) {
	tokens, err := token.NewIssuer(cfg.AppJWTSecret, cfg.JWTIssuer, cfg.JWTAudience, deps.clock)
	if err != nil {
		return nil, err
	}

	loginService, err := login.NewService(
		deps.resolver,
		deps.sessions,
		tokens,
		cfg.SessionTTL,
		deps.clock,
		login.WithProvider(deps.provider.Name()),
	)
	if err != nil {
		return nil, err
	}

	cookie := session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	oauthGuard := middleware.NewOAuthGuard(deps.provider, cfg.CookieSecure)
	authHandler := handler.NewHandler(loginService, cookie, handler.Guards{
		Initiate: []gin.HandlerFunc{oauthGuard.Begin},
		Callback: []gin.HandlerFunc{oauthGuard.Complete},
	})
	sessionProvider := session.NewProvider(deps.sessions, cookie, signInPath, deps.clock)
	presenterHandler := presenter.NewHandler(sessionProvider, pageTitle)
	authMiddleware := middleware.NewAuthMiddleware(deps.sessions, tokens, deps.clock)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NotFoundError("route not found"))
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterRoutes(router)
	presenterHandler.RegisterRoutes(router)

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		sess, _ := middleware.SessionFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("userID"),
			"name":    sess.Name,
		})
	})

	return router, nil
}
