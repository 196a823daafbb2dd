package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origins ...string) *gin.Engine {
	r := gin.New()
	r.Use(CORS(origins))
	r.POST("/functions/nutrition-ai", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/functions/nutrition-ai", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	corsRouter("*").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "authorization")
}

func TestCORSRestrictedOrigins(t *testing.T) {
	r := corsRouter("https://app.example.com", ".preview.example.com")

	for origin, allowed := range map[string]bool{
		"https://app.example.com":           true,
		"https://pr-12.preview.example.com": true,
		"https://evil.test":                 false,
	} {
		req := httptest.NewRequest(http.MethodPost, "/functions/nutrition-ai", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		if allowed {
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"), origin)
		} else {
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://app.example.com", ".preview.example.com"}
	assert.True(t, OriginAllowed(allowed, "https://app.example.com"))
	assert.True(t, OriginAllowed(allowed, "https://pr-3.preview.example.com"))
	assert.False(t, OriginAllowed(allowed, "https://app.example.com.evil.test"))
	assert.False(t, OriginAllowed(nil, "https://app.example.com"))
	assert.True(t, OriginAllowed([]string{"*"}, "https://anything.test"))
}
