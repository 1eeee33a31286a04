package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(window time.Duration, hits *int) (*gin.Engine, *rateLimiter) {
	gin.SetMode(gin.TestMode)
	limiter := &rateLimiter{
		window:        window,
		last:          make(map[string]time.Time),
		sweepInterval: 10 * window,
		now:           time.Now,
	}
	r := gin.New()
	r.POST("/chat", limiter.handle, func(c *gin.Context) {
		*hits++
		c.Status(http.StatusOK)
	})
	return r, limiter
}

func doPost(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksWithinWindow(t *testing.T) {
	hits := 0
	r, limiter := newLimitedRouter(time.Minute, &hits)

	base := time.Now()
	limiter.now = func() time.Time { return base }
	doPost(r, "/chat")
	require.Equal(t, 1, hits)

	limiter.now = func() time.Time { return base.Add(30 * time.Second) }
	doPost(r, "/chat")
	require.Equal(t, 1, hits)

	limiter.now = func() time.Time { return base.Add(61 * time.Second) }
	doPost(r, "/chat")
	require.Equal(t, 2, hits)
}

func TestRateLimit_ZeroWindowDisabled(t *testing.T) {
	hits := 0
	r, _ := newLimitedRouter(0, &hits)

	doPost(r, "/chat")
	doPost(r, "/chat")
	require.Equal(t, 2, hits)
}

func TestRateLimit_KeysAreIndependentPerPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &rateLimiter{
		window:        time.Minute,
		last:          make(map[string]time.Time),
		sweepInterval: 10 * time.Minute,
		now:           time.Now,
	}
	hits := map[string]int{}
	var mu sync.Mutex
	count := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			mu.Lock()
			hits[name]++
			mu.Unlock()
			c.Status(http.StatusOK)
		}
	}
	r := gin.New()
	r.POST("/chat", limiter.handle, count("chat"))
	r.POST("/models", limiter.handle, count("models"))

	doPost(r, "/chat")
	doPost(r, "/models")
	require.Equal(t, 1, hits["chat"])
	require.Equal(t, 1, hits["models"])
}

func TestCleanupExpiredLocked(t *testing.T) {
	base := time.Now()
	limiter := &rateLimiter{
		window:        time.Minute,
		last:          map[string]time.Time{"stale|/chat": base.Add(-2 * time.Minute), "fresh|/chat": base},
		lastSweep:     base.Add(-11 * time.Minute),
		sweepInterval: 10 * time.Minute,
		now:           func() time.Time { return base },
	}

	limiter.cleanupExpiredLocked(base)

	require.NotContains(t, limiter.last, "stale|/chat")
	require.Contains(t, limiter.last, "fresh|/chat")
	require.Equal(t, base, limiter.lastSweep)
}
