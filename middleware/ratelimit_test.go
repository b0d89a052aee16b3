package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, quietLogger())
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, perform(r, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, perform(r, req).Code)
}

func TestRateLimiterKeysByClientIP(t *testing.T) {
	rl := NewRateLimiter(1, 1, quietLogger())
	r := gin.New()
	email := "asha@example.com"
	r.Use(func(c *gin.Context) {
		c.Set(EmailKey, email)
		c.Next()
	}, rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	assert.Equal(t, http.StatusOK, perform(r, req).Code)

	email = "rafi@example.com"
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	assert.Equal(t, http.StatusTooManyRequests, perform(r, req).Code)
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "10.0.0.3")
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, quietLogger())
	for i := 0; i <= maxTrackedClients; i++ {
		rl.getLimiter(fmt.Sprintf("client-%d", i))
	}
	rl.Cleanup()
	assert.Empty(t, rl.limiters)

	rl.getLimiter("one")
	rl.Cleanup()
	assert.Len(t, rl.limiters, 1)
}

func TestRateLimiterSchedule(t *testing.T) {
	rl := NewRateLimiter(1, 1, quietLogger())
	c := cron.New()
	assert.NoError(t, rl.Schedule(c, "@every 10m"))
	assert.Len(t, c.Entries(), 1)
	assert.Error(t, rl.Schedule(c, "not a spec"))
}
