package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLimiter_SameKeySameLimiter(t *testing.T) {
	l := NewClientLimiter(RateLimitConfig{})

	a := l.GetLimiter("10.0.0.1")
	b := l.GetLimiter("10.0.0.1")
	c := l.GetLimiter("10.0.0.2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, l.Len())
}

func TestNewClientLimiter_Defaults(t *testing.T) {
	l := NewClientLimiter(RateLimitConfig{RequestsPerSecond: -1})

	assert.Equal(t, DefaultConfig(), l.config)
}

func TestClientLimiter_BurstThenReject(t *testing.T) {
	l := NewClientLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	assert.True(t, l.Allow("other"), "buckets are per key")
}

func TestClientLimiter_Prune(t *testing.T) {
	l := NewClientLimiter(RateLimitConfig{})
	l.GetLimiter("old")
	l.limiters["old"].lastSeen = time.Now().Add(-time.Hour)
	l.GetLimiter("fresh")

	dropped := l.Prune(10 * time.Minute)

	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, l.Len())
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	l := NewClientLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	h := Middleware(l)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/travelpayouts/flights", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)
	rec := call()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests."}`, rec.Body.String())
}
