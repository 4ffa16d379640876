package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/snowch/vast-sp-console/internal/infrastructure/ratelimit"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

func TestClientKey(t *testing.T) {
	t.Run("forwarded-for wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 192.0.2.1")
		assert.Equal(t, "203.0.113.7", ClientKey(req))
	})

	t.Run("falls back to peer address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		assert.Equal(t, "192.0.2.1", ClientKey(req))
	})

	t.Run("addressless traffic shares one bucket", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ""
		assert.Equal(t, "unknown", ClientKey(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := ratelimit.NewSlidingWindow(2, time.Minute)

	engine := gin.New()
	engine.Use(RateLimit(limiter, nil, logger.NewNop()))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, get("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, get("192.0.2.1:1002"))

	// Another client keeps its own budget.
	assert.Equal(t, http.StatusOK, get("198.51.100.9:1000"))
}
