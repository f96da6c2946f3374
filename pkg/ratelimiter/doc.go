// Package ratelimiter implements token bucket rate limiting for the HTTP API.
//
// A Bucket holds Capacity tokens and regains RefillRate tokens every
// RefillInterval. Each request takes one token; a request that finds too few
// tokens is denied and takes nothing.
//
// Two stores are provided. MemoryStore is per process. RedisStore runs the
// refill and consume step as a Lua script so replicas share a limit.
//
//	store := ratelimiter.NewRedisStore(client, "payvalidator:ratelimit:")
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       30,
//		RefillRate:     1,
//		RefillInterval: time.Second,
//	})
//	r.Use(ratelimiter.Middleware(bucket, keyFunc))
//
// Middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every limited response, plus Retry-After on denials.
package ratelimiter
