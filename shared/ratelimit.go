package shared

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// clientLimiters holds one token bucket per client IP. Pollers hit /api a
// few times per second at most; the bucket is sized well above that.
type clientLimiters struct {
	sync.Mutex
	buckets map[string]*rate.Limiter
}

func (cl *clientLimiters) get(ip string, r rate.Limit, burst int) *rate.Limiter {
	cl.Lock()
	defer cl.Unlock()

	limiter, ok := cl.buckets[ip]
	if !ok {
		limiter = rate.NewLimiter(r, burst)
		cl.buckets[ip] = limiter
	}
	return limiter
}

// GetRateLimitMiddleware answers 429 once a client exceeds the per-IP budget.
func GetRateLimitMiddleware(perSecond float64, burst int) fiber.Handler {
	limiters := &clientLimiters{buckets: make(map[string]*rate.Limiter)}

	return func(c *fiber.Ctx) error {
		limiter := limiters.get(GetClientIP(c), rate.Limit(perSecond), burst)
		if !limiter.Allow() {
			return SendStandardResponse(c, StatusTooManyRequests, nil, "too many requests")
		}
		return c.Next()
	}
}
