package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginAllowed matches origin against the allow-list. "*" allows any
// origin and an entry with a leading "." matches that domain suffix.
func OriginAllowed(allowedOrigins []string, origin string) bool {
	for _, a := range allowedOrigins {
		if a == "*" || a == origin || (strings.HasPrefix(a, ".") && strings.HasSuffix(origin, a)) {
			return true
		}
	}
	return false
}

// CORS allows the configured origins.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && OriginAllowed(allowedOrigins, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
			h.Set("Access-Control-Max-Age", "3600")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
