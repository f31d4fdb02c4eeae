package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beforest/brandvoice/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limited := rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger)
	registerRoutes(router.Group("/", limited), handler)
	registerRoutes(router.Group("/api", limited), handler)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func registerRoutes(group *gin.RouterGroup, handler *Handler) {
	authGroup := group.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.GET("/me", authMiddleware(handler.authSvc), handler.Me)
	}

	secured := group.Group("/", authMiddleware(handler.authSvc))
	{
		secured.POST("/transform", handler.Transform)
		secured.GET("/transform", handler.TransformHistory)
		secured.POST("/transform/:id/feedback", handler.TransformFeedback)
		secured.POST("/test-prompts", handler.TestPrompts)

		secured.POST("/chat", handler.Chat)

		secured.GET("/conversations", handler.ListConversations)
		secured.POST("/conversations", handler.CreateConversation)
		secured.PUT("/conversations", handler.RenameConversation)
		secured.PUT("/conversations/:id", handler.RenameConversation)
		secured.DELETE("/conversations/:id", handler.DeleteConversation)
		secured.GET("/conversations/:id/messages", handler.ListMessages)
		secured.POST("/conversations/:id/export", handler.ExportConversation)

		secured.GET("/analytics", handler.Analytics)

		secured.GET("/settings", handler.GetSettings)
		secured.POST("/settings/verify-passcode", handler.VerifyPasscode)
		guard := settingsPasscodeGuard(handler.settingsSvc.CheckPasscode)
		secured.POST("/settings", guard, handler.SaveSettings)
		secured.PUT("/settings", guard, handler.PutSetting)
	}
}
