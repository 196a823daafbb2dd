package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewRateLimiter(2, nil)
	alice, bob := uuid.New(), uuid.New()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-User") == "bob" {
			c.Set(CtxUserID, bob)
		} else {
			c.Set(CtxUserID, alice)
		}
		c.Next()
	})
	r.POST("/ai", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/ai", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))
	assert.Equal(t, http.StatusOK, call("bob"), "buckets are per user")
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, nil)
	rl.get("stale")
	rl.limiters["stale"].lastSeen = time.Now().Add(-time.Hour)
	rl.get("fresh")

	rl.Cleanup(10 * time.Minute)
	assert.NotContains(t, rl.limiters, "stale")
	assert.Contains(t, rl.limiters, "fresh")
}
