package usecase

import "time"

const (
	// DefaultMaxAttempts bounds the retry loop per apply call.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the first backoff interval.
	DefaultBaseDelay = 1 * time.Second

	// DefaultMaxDelay caps every backoff schedule.
	DefaultMaxDelay = 5 * time.Second

	// DefaultTokenCacheTTL is how long applied tokens are cached for the
	// duplicate fast path.
	DefaultTokenCacheTTL = 24 * time.Hour
)
