package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/metrics"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/response"
)

// KeyFunc names the bucket a request counts against.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true for requests that skip the limiter.
type AllowFunc func(*gin.Context) bool

// Limit is one fixed-window rule. Name prefixes the Redis key and labels the
// rejection metric.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// KeyByIP buckets by client address.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + ipFromCtx(c) }
}

// KeyByUserID buckets signed-in editors by id and everyone else by address.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "user:" + uid
		}
		return "user:anon:" + ipFromCtx(c)
	}
}

// KeyByVisitor buckets public page traffic by visitor cookie, falling back to
// the client address for first-time visitors.
func KeyByVisitor() KeyFunc {
	return func(c *gin.Context) string {
		if vid, err := c.Cookie(helpers.VisitorCookie); err == nil && vid != "" {
			return "visitor:" + vid
		}
		return "visitor:ip:" + ipFromCtx(c)
	}
}

// Returns {count, pttl}; the expiry is set on the first hit of a window.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimit enforces l in Redis and sets the X-RateLimit headers. OPTIONS
// requests pass through, and so does everything while Redis is failing.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	limitHeader := strconv.Itoa(l.Max)
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, http.MethodOptions) || (l.Allow != nil && l.Allow(c)) {
			c.Next()
			return
		}

		key := "rl:" + l.Name + ":" + l.Key(c)
		res, err := incrExpireScript.Run(c.Request.Context(), rdb, []string{key}, l.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, pttl := int(res[0]), time.Duration(res[1])*time.Millisecond
		resetSec := 0
		if pttl > 0 {
			resetSec = int((pttl + time.Second - 1) / time.Second)
		}

		c.Header("X-RateLimit-Limit", limitHeader)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining(l.Max, count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > l.Max {
			metrics.RateLimited.WithLabelValues(l.Name).Inc()
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
