package controllers

import (
	"net/http"

	"civicsync-admin/config"
	"civicsync-admin/middlewares"
	"civicsync-admin/models"
	authUtils "civicsync-admin/utils"

	"github.com/gin-gonic/gin"
)

// LoginUser opens a session for any non-empty username and password.
func (h *Controllers) LoginUser(c *gin.Context) {
	var input models.LoginCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.Sessions.Login(ctx, input)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	token, err := authUtils.GenerateToken(s.ID, h.Secret, h.TokenTTL)
	if err != nil {
		h.Sessions.Logout(s.ID)
		config.Error("Error generating token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	sameSite := http.SameSiteLaxMode
	if h.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.TokenCookie,
		Value:    token,
		MaxAge:   int(h.TokenTTL.Seconds()),
		Path:     "/",
		Domain:   h.Domain,
		Secure:   h.Secure,
		HttpOnly: true,
		SameSite: sameSite,
	})

	config.Info("User %s logged in (%s, %s)", s.User.Username, s.User.Role, s.User.Department)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  s.User,
	})
}

// GetMe returns the session user.
func (h *Controllers) GetMe(c *gin.Context) {
	s, ok := middlewares.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": s.User})
}

// LogoutUser tears down the session and clears the auth cookie.
func (h *Controllers) LogoutUser(c *gin.Context) {
	if s, ok := middlewares.CurrentSession(c); ok {
		h.Sessions.Logout(s.ID)
	}
	c.SetCookie(middlewares.TokenCookie, "", -1, "/", h.Domain, h.Secure, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
