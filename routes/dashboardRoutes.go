package routes

import (
	"civicsync-admin/controllers"

	"github.com/gin-gonic/gin"
)

func DashboardRoutes(r *gin.Engine, h *controllers.Controllers, auth gin.HandlerFunc) {
	dash := r.Group("/api/dashboard", auth)
	{
		dash.GET("", h.GetDashboard)
		dash.POST("/department", h.ToggleDepartment)
		dash.GET("/focus", h.GetFocus)
	}
}

func NotificationRoutes(r *gin.Engine, h *controllers.Controllers, auth gin.HandlerFunc) {
	notifications := r.Group("/api/notifications", auth)
	{
		notifications.GET("", h.GetNotifications)
		notifications.POST("/read", h.MarkNotificationsRead)
		notifications.POST("/:id/open", h.OpenNotification)
	}
}
