package server

import (
	"math"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// newRouteLimiter builds a per-client budget of limit requests per window.
// A client's window opens at its first request and rejected requests do not
// extend it. Expired clients are swept every window.
func newRouteLimiter(route string, limit int, window time.Duration, trustForwardedFor bool) *limiter.Limiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "analyst:" + route,
		CleanUpInterval: window,
	})
	rate := limiter.Rate{
		Period: window,
		Limit:  int64(limit),
	}
	return limiter.New(store, rate, limiter.WithTrustForwardHeader(trustForwardedFor))
}

// retryAfterSeconds converts a limiter reset timestamp (unix seconds) into a
// Retry-After value, never less than one second
func retryAfterSeconds(reset int64, now time.Time) int {
	seconds := int(math.Ceil(time.Unix(reset, 0).Sub(now).Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
