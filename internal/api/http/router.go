package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
)

type Controllers struct {
	Auth     *AuthController
	Partners *PartnerController
	Tasks    *TaskController
	Messages *MessageController
	Charts   *ChartController
	Socket   *SocketController
}

func SetupRouter(ctrl Controllers, authMW *middleware.AuthMiddleware, allowedOrigins []string) *gin.Engine {
	router := gin.Default()
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
		"x-auth-token",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", ctrl.Auth.Register)
	auth.POST("/login", ctrl.Auth.Login)
	auth.POST("/check-email", ctrl.Auth.CheckEmail)
	auth.POST("/forgot-password", ctrl.Auth.ForgotPassword)
	auth.POST("/reset-password/:token", ctrl.Auth.ResetPassword)

	protected := api.Group("")
	protected.Use(authMW.RequireAuth())

	protected.GET("/auth/user", ctrl.Auth.GetUser)
	protected.PUT("/auth/onboarding", ctrl.Auth.UpdateOnboarding)
	protected.PUT("/auth/mood", ctrl.Auth.UpdateMood)

	partner := protected.Group("/partner")
	partner.POST("/connect", ctrl.Partners.Connect)
	partner.GET("/status", ctrl.Partners.Status)

	tasks := protected.Group("/tasks")
	tasks.GET("/daily", ctrl.Tasks.GetDaily)
	tasks.PUT("/:taskID/complete", ctrl.Tasks.Complete)
	tasks.POST("/:taskID/respond", ctrl.Tasks.Respond)
	tasks.POST("/:taskID/feedback", ctrl.Tasks.SubmitFeedback)

	protected.GET("/messages/:room", ctrl.Messages.History)
	protected.GET("/charts/data", ctrl.Charts.Data)

	protected.GET("/ws", ctrl.Socket.Serve)

	return router
}
