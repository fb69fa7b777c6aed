package controllers

import (
	"net/http"

	"civicsync-admin/models"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the overview for the current view state. Query
// parameters update the state first, as on the issue listing.
func (h *Controllers) GetDashboard(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}
	if err := p.Apply(queryChange(c)); err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	overview, err := p.Overview(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":    p.State(),
		"overview": overview,
	})
}

// ToggleDepartment selects a department card, or clears it when clicked twice.
func (h *Controllers) ToggleDepartment(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	var input struct {
		Department models.Department `json:"department" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selected, err := p.ToggleDepartment(input.Department)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"department": selected,
		"state":      p.State(),
	})
}

// GetFocus tells the map where to center after a search.
func (h *Controllers) GetFocus(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	focus, found, err := p.Focus(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"focus": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"focus": focus})
}
