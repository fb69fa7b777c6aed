package routes

import (
	"civicsync-admin/controllers"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes. limit, when non-nil, guards every
// mutation.
func IssueRoutes(r *gin.Engine, h *controllers.Controllers, auth, limit gin.HandlerFunc) {
	mutating := []gin.HandlerFunc{auth}
	if limit != nil {
		mutating = append(mutating, limit)
	}
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutating...), fn)
	}

	issue := r.Group("/api/issues")
	{
		issue.GET("", auth, h.GetIssues)
		issue.POST("/refresh", auth, h.RefreshIssues)
		issue.GET("/:id", auth, h.GetIssue)
		issue.POST("/:id/dispatch", with(h.DispatchIssue)...)
		issue.POST("/:id/reject", with(h.RejectIssue)...)
		issue.POST("/:id/resolve", with(h.ResolveIssue)...)
		issue.DELETE("/:id", with(h.DeleteIssue)...)
	}
}
