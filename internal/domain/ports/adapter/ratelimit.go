package adapter

import "context"

// RateLimiter bounds request rate per client key within a time window.
// The storage behind it is an implementation choice: a process-local counter
// works for single instances, a shared store for horizontal scale. The
// routing layer only ever sees this interface.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
