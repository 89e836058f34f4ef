// Package ratelimit paces outgoing Reddit API calls.
//
// TokenBucket wraps golang.org/x/time/rate so callers can block with a
// context instead of sleeping:
//
//	limiter := ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
