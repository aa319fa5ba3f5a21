package redis

import "errors"

// Sentinel errors for Redis client operations.
var (
	// ErrDisabled is returned by Connect when Redis is disabled in config.
	ErrDisabled = errors.New("redis is disabled in configuration")

	// ErrConnectionFailed indicates the Redis server could not be reached.
	ErrConnectionFailed = errors.New("redis connection failed")
)
