package controllers

import (
	"net/http"

	"civicsync-admin/models"

	"github.com/gin-gonic/gin"
)

func feedResponse(feed []models.Notification) gin.H {
	if feed == nil {
		feed = []models.Notification{}
	}
	unread := 0
	for _, n := range feed {
		if !n.Read {
			unread++
		}
	}
	return gin.H{"notifications": feed, "unread": unread}
}

// GetNotifications returns the feed synthesized from the current issues.
func (h *Controllers) GetNotifications(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	feed, err := p.Notifications(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, feedResponse(feed))
}

func (h *Controllers) MarkNotificationsRead(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	feed, err := p.MarkAllRead(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, feedResponse(feed))
}

// OpenNotification marks a notification read and opens its issue.
func (h *Controllers) OpenNotification(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, found, err := p.OpenNotification(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"issue": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}
