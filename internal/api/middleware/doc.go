// Package middleware provides the gin middleware of the studio host API.
//
// Middleware stack:
//   - RequestID: X-Request-ID correlation, generated with google/uuid when absent
//   - Logger: zap request logging keyed by request id
//   - CORS: cross-origin access for the UI process
//   - RateLimit: per-IP token bucket rate limiting with idle client sweep
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
