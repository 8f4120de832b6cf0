package routes

import (
	"net/http"
	"time"

	"remindly/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterDeviceRoutes registers token and guest-device endpoints.
func RegisterDeviceRoutes(r *gin.Engine, dh *handlers.DeviceHandler) {
	api := r.Group("/api/devices")
	{
		api.POST("/:userId/tokens", dh.RegisterTokenHandler)
		api.POST("/:userId/tokens/deactivate", dh.DeactivateTokenHandler)
	}
	r.PUT("/api/guests", dh.UpsertGuestDeviceHandler)
}

// RegisterNotificationRoutes registers dispatch and feed endpoints.
func RegisterNotificationRoutes(r *gin.Engine, nh *handlers.NotificationHandler) {
	api := r.Group("/api/notifications")
	{
		api.POST("/broadcast", nh.BroadcastHandler)
		api.POST("/users", nh.SendToUsersHandler)
		api.POST("/users/:userId", nh.SendToUserHandler)
		api.POST("/users/:userId/events/:eventId", nh.SendEventReminderHandler)
		api.POST("/guests/:deviceId", nh.SendToDeviceHandler)
		api.POST("/topics/:topic", nh.SendToTopicHandler)
		api.POST("/reminders", nh.ScheduleReminderHandler)

		api.GET("/users/:userId", nh.ListUserNotificationsHandler)
		api.GET("/guests/:deviceId", nh.ListGuestNotificationsHandler)
		api.PUT("/users/:userId/read-all", nh.MarkAllReadHandler)
		api.PUT("/users/:userId/:notificationId/read", nh.MarkReadHandler)
		api.PUT("/guests/:deviceId/:notificationId/read", nh.MarkGuestReadHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Remindly"})
	})
}

// RegisterRoutes wires CORS and all endpoint groups.
func RegisterRoutes(r *gin.Engine, dh *handlers.DeviceHandler, nh *handlers.NotificationHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Device-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterDeviceRoutes(r, dh)
	RegisterNotificationRoutes(r, nh)
}
