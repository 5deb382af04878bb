package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carpool/internal/domain"
	"carpool/internal/handler"
	"carpool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	RideHandler         *handler.RideHandler
	ChatHandler         *handler.ChatHandler
	DonationHandler     *handler.DonationHandler
	NotificationHandler *handler.NotificationHandler
	FeedbackHandler     *handler.FeedbackHandler
	UserHandler         *handler.UserHandler
	AdminHandler        *handler.AdminHandler
	WSHandler           *handler.WSHandler
	JWTSecret           string
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := middleware.RequireAuth(deps.JWTSecret)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Auth routes.
		auth := v1.Group("/auth")
		{
			auth.POST("/register/passenger", deps.AuthHandler.RegisterPassenger)
			auth.POST("/register/donor", deps.AuthHandler.RegisterDonor)
			auth.POST("/register/driver", deps.AuthHandler.RegisterDriver)
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Ride routes, including per-ride requests, chat, and feedback.
		rides := v1.Group("/rides")
		{
			rides.GET("", deps.RideHandler.ListRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("", authed, middleware.RequireRole(domain.RoleDriver), deps.RideHandler.CreateRide)

			rides.POST("/:id/requests", authed, middleware.RequireRole(domain.RolePassenger), deps.RideHandler.SubmitRequest)
			rides.GET("/:id/requests", authed, deps.RideHandler.ListRequests)
			rides.POST("/:id/requests/:passengerId/approve", authed, deps.RideHandler.ApproveRequest)
			rides.POST("/:id/requests/:passengerId/reject", authed, deps.RideHandler.RejectRequest)
			rides.POST("/:id/requests/:passengerId/cancel", authed, deps.RideHandler.CancelRequest)
			rides.POST("/:id/requests/:passengerId/complete", authed, deps.RideHandler.CompleteRequest)

			rides.GET("/:id/chat", authed, deps.ChatHandler.GetChat)
			rides.POST("/:id/chat/messages", authed, deps.ChatHandler.SendMessage)

			rides.GET("/:id/feedback", authed, deps.FeedbackHandler.ListByRide)
		}

		// Donation routes.
		v1.GET("/chats", authed, deps.ChatHandler.ListMine)

		donations := v1.Group("/donations", authed)
		{
			donations.POST("", middleware.RequireRole(domain.RoleDonor), deps.DonationHandler.Donate)
			donations.GET("/received", deps.DonationHandler.ListReceived)
			donations.GET("/sent", deps.DonationHandler.ListSent)
		}

		// Notification routes.
		notifications := v1.Group("/notifications", authed)
		{
			notifications.GET("", deps.NotificationHandler.List)
			notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
			notifications.POST("/read-all", deps.NotificationHandler.MarkAllRead)
		}

		// Feedback routes.
		v1.POST("/feedback", authed, deps.FeedbackHandler.Submit)

		// Account routes.
		v1.DELETE("/users/me", authed, deps.UserHandler.DeleteAccount)

		// Admin routes.
		admin := v1.Group("/admin", authed, middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/users", deps.AdminHandler.ListUsers)
			admin.GET("/drivers", deps.AdminHandler.ListDrivers)
			admin.POST("/drivers/:id/verify", deps.AdminHandler.VerifyDriver)
			admin.DELETE("/users/:id", deps.UserHandler.DeleteUser)
		}

		// Live notification stream.
		v1.GET("/ws", authed, deps.WSHandler.Connect)
	}

	return router
}
