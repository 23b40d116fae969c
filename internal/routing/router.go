package routing

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"starter-server/internal/config"
	"starter-server/internal/managers"
	"starter-server/internal/middleware"
	"starter-server/internal/routing/handlers"
	"starter-server/internal/schemas"
	"starter-server/internal/services"
	"starter-server/internal/utils"
)

const healthTimeout = 2 * time.Second

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	DatabaseMgr managers.DatabaseMgr
	MailMgr     managers.MailMgr
	JWTMgr      managers.JWTMgr
	Hasher      managers.PasswordHasher
	Metrics     *managers.MetricsManager
	// Clock pins the time seen by the services, nil means time.Now.
	Clock services.Clock
}

func InitRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	switch {
	case cfg.IsTest():
		gin.SetMode(gin.TestMode)
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router without default logging and recovery middleware
	router := gin.New()
	router.ContextWithFallback = true
	// Only listed proxies may override the client IP the rate limiter keys on
	if err := router.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warnf("Ignoring invalid TRUSTED_PROXIES: %v", err)
		_ = router.SetTrustedProxies(nil)
	}
	// Initialize middleware
	setupCommonMiddleware(router, cfg, deps.Metrics)
	// Setup routes
	setupRoutes(router, cfg, deps)

	return router
}

func setupCommonMiddleware(router *gin.Engine, cfg *config.Config, metrics *managers.MetricsManager) {
	if !cfg.IsTest() {
		router.Use(gin.Logger())
	}
	router.Use(middleware.InjectTrace())
	router.Use(middleware.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.AllowOrigins,
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
	router.Use(middleware.Metrics(metrics))
}

func setupRoutes(router *gin.Engine, cfg *config.Config, deps Dependencies) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		metadata := &schemas.MetadataDTO{
			ApiVersion: cfg.APIVersion(),
			ApiName:    cfg.AppName,
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := deps.DatabaseMgr.Ping(ctx); err != nil {
			utils.LogMessageWithFieldsAndError(c, "error", "Database not responding", err)
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	authService := services.NewAuthService(
		deps.DatabaseMgr,
		deps.JWTMgr,
		deps.MailMgr,
		deps.Hasher,
		deps.Metrics,
		services.TokenSettings{
			EmailVerificationLinkDuration: cfg.Auth.EmailVerificationLinkDuration,
			PasswordResetLinkDuration:     cfg.Auth.PasswordResetLinkDuration,
			FrontendURL:                   cfg.Auth.FrontendURL,
		},
		deps.Clock,
	)

	// Set up API routes
	apiRouter := router.Group("/api")
	apiRouter.Use(middleware.MaxBodySize(cfg.HTTP.MaxBodyBytes))
	if !cfg.IsTest() {
		apiRouter.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
	}

	authRoutes(apiRouter.Group("/auth"), authService)
}

func authRoutes(authRouter *gin.RouterGroup, authService *services.AuthService) {
	authHandler := handlers.NewAuthHandler(authService)

	authRouter.POST("/register", middleware.ValidateAndSanitize[schemas.RegistrationRequest](), authHandler.RegisterUser)
	authRouter.POST("/login", middleware.ValidateAndSanitize[schemas.LoginRequest](), authHandler.LoginUser)
	authRouter.POST("/request-password-reset", middleware.ValidateAndSanitize[schemas.EmailRequest](), authHandler.RequestPasswordReset)
	authRouter.PUT("/reset-password", middleware.ValidateAndSanitize[schemas.ResetPasswordRequest](), authHandler.ResetPassword)
	authRouter.PUT("/verify-email", middleware.ValidateAndSanitize[schemas.VerifyEmailRequest](), authHandler.VerifyEmail)
	authRouter.POST("/email-verification-link/resend", middleware.ValidateAndSanitize[schemas.EmailRequest](), authHandler.ResendVerificationLink)
	authRouter.GET("/me", middleware.Authenticate(authService), authHandler.Me)
}
