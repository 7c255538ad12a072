// Package service provides the stateless services behind the admission
// pipeline.
//
// AuthService verifies externally issued bearer credentials. It never mints
// or stores them. RateLimiterRegistry hands out per-client token buckets.
package service
