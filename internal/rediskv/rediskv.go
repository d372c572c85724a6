// Package rediskv adapts a go-redis client to the kv.Client contract and
// owns the process-wide shared client handle.
package rediskv

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zeflq/getrevio-core/kv"
)

// Client wraps a redis connection pool.
type Client struct {
	rdb *redis.Client
}

// New dials a redis server. The underlying pool connects lazily.
func New(addr, password string, db int) *Client {
	return Wrap(redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}))
}

// Wrap adapts an existing go-redis client.
func Wrap(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	return c.rdb.Set(ctx, key, value, 0).Err()
}

func (c *Client) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *Client) Batch() kv.Batch {
	return &batch{rdb: c.rdb}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// batch queues commands and submits them through one MULTI/EXEC pipeline, a
// single network round trip applied atomically as a unit.
type batch struct {
	rdb *redis.Client
	ops []func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder
}

func (b *batch) Set(key, value string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
		return pipe.Set(ctx, key, value, 0)
	})
}

func (b *batch) Del(key string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
		return pipe.Del(ctx, key)
	})
}

func (b *batch) Expire(key string, ttl time.Duration) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
		return pipe.Expire(ctx, key, ttl)
	})
}

func (b *batch) Exists(key string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) redis.Cmder {
		return pipe.Exists(ctx, key)
	})
}

func (b *batch) Exec(ctx context.Context) ([]kv.Result, error) {
	if len(b.ops) == 0 {
		return nil, nil
	}
	pipe := b.rdb.TxPipeline()
	cmds := make([]redis.Cmder, len(b.ops))
	for i, op := range b.ops {
		cmds[i] = op(ctx, pipe)
	}
	_, err := pipe.Exec(ctx)

	results := make([]kv.Result, len(cmds))
	for i, cmd := range cmds {
		results[i].Err = cmd.Err()
		switch c := cmd.(type) {
		case *redis.IntCmd:
			results[i].Val = c.Val()
		case *redis.BoolCmd:
			if c.Val() {
				results[i].Val = 1
			}
		}
	}
	b.ops = nil
	return results, err
}

// Shared is the lazily-initialized process-wide client. Opened on first use,
// explicitly closable, never torn down automatically.
var shared struct {
	mu     sync.Mutex
	client *Client
}

// Shared returns the process-wide client, dialing it on first call. The
// guard makes concurrent first calls initialize exactly once.
func Shared(addr, password string, db int) *Client {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.client == nil {
		shared.client = New(addr, password, db)
	}
	return shared.client
}

// CloseShared closes the process-wide client if open. A later Shared call
// dials a fresh one.
func CloseShared() error {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.client == nil {
		return nil
	}
	err := shared.client.Close()
	shared.client = nil
	return err
}
