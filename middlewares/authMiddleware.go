package middlewares

import (
	"net/http"
	"strings"

	"civicsync-admin/config"
	"civicsync-admin/session"
	authUtils "civicsync-admin/utils"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookie carries the session token for browser clients.
	TokenCookie = "auth_token"
	sessionKey  = "session"
)

// AuthMiddleware resolves the session from a Bearer token or the auth cookie.
func AuthMiddleware(sessions *session.Manager, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		sessionID, err := authUtils.ParseToken(tokenString, secret)
		if err != nil {
			config.Warning("Token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		s, err := sessions.Get(sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			c.Abort()
			return
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentSession returns the session AuthMiddleware attached to the request.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}
