// Package controllers holds the gin handlers of the admin panel.
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"civicsync-admin/config"
	"civicsync-admin/dashboard"
	"civicsync-admin/middlewares"
	"civicsync-admin/panel"
	"civicsync-admin/session"
	"civicsync-admin/store"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 10 * time.Second

// Controllers carries what the handlers share.
type Controllers struct {
	Sessions *session.Manager
	Secret   []byte
	TokenTTL time.Duration
	Secure   bool
	Domain   string
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// currentPanel writes a 401 when the request has no session.
func currentPanel(c *gin.Context) (*panel.Controller, bool) {
	s, ok := middlewares.CurrentSession(c)
	if !ok || s.Panel == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}
	return s.Panel, true
}

// respondError maps err to a status. fallback covers collaborator failures
// that are not otherwise classified.
func respondError(c *gin.Context, err error, fallback int) {
	switch {
	case errors.Is(err, session.ErrMissingCredentials),
		errors.Is(err, session.ErrInvalidProfile),
		errors.Is(err, panel.ErrUnknownView),
		errors.Is(err, panel.ErrUnknownStatus),
		errors.Is(err, panel.ErrUnknownDepartment),
		errors.Is(err, dashboard.ErrResolutionIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dashboard.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, dashboard.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		config.Error("issue service unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not connect to the server"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	default:
		config.Error("request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(fallback, gin.H{"error": "Something went wrong"})
	}
}
