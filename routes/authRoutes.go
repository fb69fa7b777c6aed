package routes

import (
	"civicsync-admin/controllers"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, h *controllers.Controllers, auth gin.HandlerFunc) {
	group := r.Group("/api/auth")
	{
		group.POST("/login", h.LoginUser)
		group.POST("/logout", auth, h.LogoutUser)
		group.GET("/me", auth, h.GetMe)
	}
	r.GET("/api/profile", auth, h.GetProfile)
}
