package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS applies the gallery's fixed browser policy: any origin may call
// the API, credentials ride in the Authorization header rather than
// cookies, and preflights are answered without hitting a handler.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
