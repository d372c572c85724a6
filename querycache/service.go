// Package querycache provides the in-process read-through cache for query
// engine results and the invalidation signal target for the action engine.
//
// Keys are namespaced per resource ({resource}::{op}::…) so a write to one
// resource can drop exactly that resource's cached reads. Every key handed to
// GetOrFetch is tracked in a registry; invalidation walks the registry by
// prefix rather than scanning the backing cache.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
)

// Config holds the sizing knobs for the backing cache.
type Config struct {
	// Capacity is the maximum number of cached entries. Must be > 0.
	Capacity int
	// NumShards controls concurrent-access sharding. Must be > 0.
	NumShards int
	// TTL is the default entry lifetime. Must be > 0.
	TTL time.Duration
	// EvictionPercentage is how much to evict at capacity, 1-100.
	EvictionPercentage int
	// MissingRecordStorage remembers keys that fetched no result, preventing
	// repeated store hits for absent records.
	MissingRecordStorage bool
	// EvictionInterval overrides how often expired entries are collected.
	// Zero keeps the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig returns sizing suitable for a back-office read path.
func DefaultConfig() Config {
	return Config{
		Capacity:             10000,
		NumShards:            64,
		TTL:                  time.Minute,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

func (c Config) options() []sturdyc.Option {
	var opts []sturdyc.Option
	if c.MissingRecordStorage {
		opts = append(opts, sturdyc.WithMissingRecordStorage())
	}
	if c.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return opts
}

// ConfigError reports an invalid cache configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Service is the shared result cache. One instance serves every resource;
// resource namespacing keeps their keys apart.
type Service struct {
	client *sturdyc.Client[any]
	keys   *xsync.MapOf[string, struct{}]
	tags   *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
}

// New builds a Service from the configuration.
func New(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		client: sturdyc.New[any](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, cfg.options()...),
		keys:   xsync.NewMapOf[string, struct{}](),
		tags:   xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
	}, nil
}

// GetOrFetch returns the cached value under key, or runs fetch, stores the
// result, and returns it. The key is registered for later invalidation,
// including under any tags riding on the context.
func GetOrFetch[T any](ctx context.Context, s *Service, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	s.track(ctx, key)
	v, err := s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("querycache: key %q holds %T", key, v)
	}
	return out, nil
}

func (s *Service) track(ctx context.Context, key string) {
	s.keys.Store(key, struct{}{})
	for _, tag := range TagsFrom(ctx) {
		set, _ := s.tags.LoadOrStore(tag, xsync.NewMapOf[string, struct{}]())
		set.Store(key, struct{}{})
	}
}

// Invalidate drops specific keys.
func (s *Service) Invalidate(keys ...string) {
	for _, key := range keys {
		s.client.Delete(key)
		s.keys.Delete(key)
	}
}

// InvalidateResource drops every tracked key in the resource's namespace.
// This is the target of the action engine's fire-and-forget signal.
func (s *Service) InvalidateResource(resource string) {
	s.invalidatePrefix(Namespace(resource) + KeySeparator)
}

// InvalidateTag drops every key registered under the tag.
func (s *Service) InvalidateTag(tag string) {
	set, ok := s.tags.LoadAndDelete(tag)
	if !ok {
		return
	}
	set.Range(func(key string, _ struct{}) bool {
		s.client.Delete(key)
		s.keys.Delete(key)
		return true
	})
}

func (s *Service) invalidatePrefix(prefix string) {
	s.keys.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
			s.keys.Delete(key)
		}
		return true
	})
}
