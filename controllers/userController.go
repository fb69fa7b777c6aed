package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProfile returns the settings page data: the user and the resolved issues
// credited to them.
func (h *Controllers) GetProfile(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resolved, err := p.Profile(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":           p.User(),
		"resolvedIssues": resolved,
	})
}
