// Package kv defines the narrow key/value contract the redirect cache is
// written through: four verbs plus an atomic batch. The redis adapter lives
// in internal/rediskv; Memory backs tests and examples.
package kv

import (
	"context"
	"time"
)

// Result is one per-command outcome in batch order. Val carries the integer
// reply where the command has one (exists: 0 or 1), zero otherwise.
type Result struct {
	Val int64
	Err error
}

// Batch queues commands and submits them as one atomic unit. Implementations
// must apply queued commands in order and return per-command results in the
// same order.
type Batch interface {
	Set(key, value string)
	Del(key string)
	Expire(key string, ttl time.Duration)
	Exists(key string)
	Exec(ctx context.Context) ([]Result, error)
}

// Client is the cache store handle. All methods are safe for concurrent use.
type Client interface {
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Batch() Batch
	Close() error
}
