// Package di wires the process-wide singletons and provides factory helpers
// for building per-resource engines. Factories that need a type parameter are
// package-level functions since Go methods cannot carry their own.
package di

import (
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/zeflq/getrevio-core/config"
	"github.com/zeflq/getrevio-core/internal/bunstore"
	"github.com/zeflq/getrevio-core/internal/memstore"
	"github.com/zeflq/getrevio-core/internal/rediskv"
	"github.com/zeflq/getrevio-core/kv"
	"github.com/zeflq/getrevio-core/querycache"
	"github.com/zeflq/getrevio-core/store"
)

// Options assembles a Container. Config is required. A nil KV falls back to
// the shared redis client from Config; a nil DB makes NewStore hand out
// in-memory adapters, which is what the example program and tests want.
type Options struct {
	Config config.Config
	Logger *zap.Logger
	KV     kv.Client
	DB     *bun.DB
}

// Container manages singleton instances of the logger, the cache store
// client, and the query result cache, and carries the backing DB handle the
// store factories build adapters from.
type Container struct {
	cfg    config.Config
	log    *zap.Logger
	kv     kv.Client
	db     *bun.DB
	qcache *querycache.Service
}

// New builds a container from options, constructing whatever singletons the
// caller did not supply.
func New(opts Options) (*Container, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		var err error
		if log, err = opts.Config.NewLogger(); err != nil {
			return nil, err
		}
	}

	client := opts.KV
	if client == nil {
		client = rediskv.Shared(opts.Config.RedisAddr, opts.Config.RedisPassword, opts.Config.RedisDB)
	}

	qcache, err := querycache.New(opts.Config.QueryCache)
	if err != nil {
		return nil, err
	}

	return &Container{
		cfg:    opts.Config,
		log:    log,
		kv:     client,
		db:     opts.DB,
		qcache: qcache,
	}, nil
}

// Config returns a copy of the configuration this container was built from.
func (c *Container) Config() config.Config { return c.cfg }

// Logger returns the process logger.
func (c *Container) Logger() *zap.Logger { return c.log }

// KV returns the cache store client.
func (c *Container) KV() kv.Client { return c.kv }

// QueryCache returns the shared query result cache.
func (c *Container) QueryCache() *querycache.Service { return c.qcache }

// NewStore builds a store adapter for T: bun-backed when the container has a
// DB handle, in-memory otherwise.
func NewStore[T any](c *Container) store.Adapter[T] {
	if c.db != nil {
		return bunstore.New[T](c.db)
	}
	return memstore.New[T]()
}
