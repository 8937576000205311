package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/services/common/auth"
	"github.com/yashrajoria/stayshop/services/notification-service/controllers"
)

// RegisterRoutes mounts the health check and the basic-auth protected log API.
func RegisterRoutes(router *gin.Engine, controller *controllers.NotificationController, creds auth.Credentials) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "notification-service"})
	})

	admin := router.Group("/notifications", auth.BasicAuth(creds))
	{
		admin.GET("/log", controller.GetNotificationLogs)
		admin.GET("/log/:id", controller.GetNotificationLog)
		admin.GET("/stats", controller.GetStats)
	}
}
