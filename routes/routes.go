package routes

import (
	"net/http"

	"civicsync-admin/controllers"

	"github.com/gin-gonic/gin"
)

// Setup registers every route of the panel on r.
func Setup(r *gin.Engine, h *controllers.Controllers, auth, limit gin.HandlerFunc) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	AuthRoutes(r, h, auth)
	IssueRoutes(r, h, auth, limit)
	DashboardRoutes(r, h, auth)
	NotificationRoutes(r, h, auth)
}
