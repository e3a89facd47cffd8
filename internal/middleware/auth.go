package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/security"
)

const ContextUserID = "user_id"

// Auth validates the bearer token and stores the caller identity in
// the request context. Every gallery route sits behind it; there is no
// way to reach a record without an owner attached.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "authorization header must be a bearer token")
			return
		}

		claims, err := security.ParseAccessToken(parts[1], secret)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		if claims.Subject == "" {
			unauthorized(c, "token carries no subject")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": msg,
	})
}
