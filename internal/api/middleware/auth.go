package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pythonegrove/codesamples/internal/auth"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
)

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// OptionalAuthMiddleware sets the user ID from a session JWT found in the Authorization
// header or in cookieName. Requests without a valid token continue anonymously.
func OptionalAuthMiddleware(jwtSecret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" && cookieName != "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				tokenString = cookie
			}
		}

		if tokenString != "" {
			if claims, err := auth.ValidateJWT(tokenString, jwtSecret); err == nil {
				c.Set(ContextKeyUserID, claims.UserID)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}
