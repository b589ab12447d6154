package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-social-graph/pkg/response"
)

// KeyFunc maps a request to the counter it is charged against.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports requests that bypass the limiter.
type AllowFunc func(*gin.Context) bool

func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "rl:ip:" + ipFromCtx(c) }
}

// KeyByIPAndPath charges each route template separately, so a burst on
// /auth/reset/init does not eat the budget of /auth/reset/confirm.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		return "rl:path:" + route + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits per authenticated user, falling back to the client IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + ipFromCtx(c)
	}
}

// fixedWindow increments KEYS[1], opens the window on the first hit and
// returns {count, remaining window in ms}.
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// Limiter is a fixed-window counter shared across instances through Redis.
type Limiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewLimiter(rdb *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, max: max, window: window}
}

// Hit charges one request to key and returns the count in the current window
// and the time until it resets.
func (l *Limiter) Hit(ctx context.Context, key string) (int, time.Duration, error) {
	res, err := fixedWindow.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	switch len(res) {
	case 0:
		return 0, l.window, nil
	case 1:
		return int(res[0]), l.window, nil
	}
	reset := time.Duration(res[1]) * time.Millisecond
	if reset < 0 {
		reset = 0
	}
	return int(res[0]), reset, nil
}

// Handler enforces the limit. Redis errors let the request through.
func (l *Limiter) Handler(keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}
		count, reset, err := l.Hit(c.Request.Context(), keyFn(c))
		if err != nil {
			c.Next()
			return
		}
		remaining := l.max - count
		if remaining < 0 {
			remaining = 0
		}
		resetSec := strconv.Itoa(int(reset.Round(time.Second) / time.Second))
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetSec)
		if count > l.max {
			c.Header("Retry-After", resetSec)
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

// RateLimit builds a Limiter handler. Without Redis or with a non-positive
// budget it is a pass-through.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return NewLimiter(rdb, max, window).Handler(keyFn, allow)
}
