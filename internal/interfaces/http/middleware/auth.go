package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"link-pago.backend/pkg/jwt"
	"link-pago.backend/pkg/redis"
)

const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"

	// SessionCookieName holds the dashboard session id set after Google login.
	SessionCookieName = "lp_session"

	bearerPrefix = "Bearer "
)

// AuthMiddleware accepts either a Bearer JWT (API clients) or a session
// cookie (dashboard). Whichever is present and valid sets the user identity
// in the gin context.
func AuthMiddleware(jwtService *jwt.JWTService, sessionStore *redis.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Path A: Bearer token
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, bearerPrefix) {
			tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				msg := "invalid token"
				if err == jwt.ErrExpiredToken {
					msg = "token has expired"
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
				return
			}
			c.Set(UserIDKey, claims.UserID.String())
			c.Set(UserEmailKey, claims.Email)
			c.Next()
			return
		}

		// Path B: session cookie
		if sessionID, err := c.Cookie(SessionCookieName); err == nil && sessionID != "" {
			session, err := sessionStore.GetSession(c.Request.Context(), sessionID)
			if err == nil && session != nil {
				c.Set(UserIDKey, session.UserID)
				c.Set(UserEmailKey, session.Email)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
	}
}

// CurrentUserID returns the authenticated user id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
