// Package query implements the read side of the resource engine: policy-
// clamped, tenant-scoped listing with projection, id lookup, and lite
// listings for selection widgets.
//
// The engine is generic over the row type and its two projections. It never
// mutates anything and never touches the redirect cache; its only optional
// side channel is the in-process result cache it can read through.
package query

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/querycache"
	"github.com/zeflq/getrevio-core/store"
)

// Op names an engine operation for authorize hooks and cache keys.
type Op string

const (
	OpList     Op = "list"
	OpGetByID  Op = "getById"
	OpListLite Op = "listLite"
)

// Filter is the typed, already-validated filter spec a resource hands to the
// engine. Parsing raw input into a Filter happens at the model boundary.
type Filter interface {
	Params() policy.ListParams
	Where() store.Where
}

// ListEnvelope wraps a page of projected rows.
type ListEnvelope[P any] struct {
	Data       []P `json:"data"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Config assembles an Engine. Adapter, Policy, Sort, and MapRow are required;
// everything else is optional.
type Config[T, Pub, Lite any] struct {
	Adapter store.Adapter[T]
	Policy  policy.QueryPolicy
	Sort    policy.SortPolicy

	// TenantKey is the field the tenant constraint is merged on. Empty means
	// the resource is unscoped.
	TenantKey string
	// IDKey is the identity field for GetByID. Defaults to "id".
	IDKey string

	MapRow  func(T) Pub
	MapLite func(T) Lite

	// Authorize runs before any data access on every operation. A non-nil
	// error aborts the request. The subject is the filter for listings and
	// the id for lookups.
	Authorize func(ctx context.Context, op Op, tenantID string, subject any) error

	// Timeout bounds each operation when > 0. The underlying store call is
	// not cancelled if the backend has no cancellation mechanism; the caller
	// just gets the deadline error.
	Timeout time.Duration

	// Cache enables read-through caching of list/get results under the
	// Resource namespace. Leave nil to always hit the adapter.
	Cache    *querycache.Service
	Resource string

	// LiteDefault and LiteMax bound listLite limits. Zero values fall back
	// to 10 and 50.
	LiteDefault int
	LiteMax     int
}

// Validate reports the first missing required configuration field.
func (c Config[T, Pub, Lite]) Validate() error {
	if c.Adapter == nil {
		return &policy.ConfigError{Field: "Adapter", Message: "is required"}
	}
	if c.MapRow == nil {
		return &policy.ConfigError{Field: "MapRow", Message: "is required"}
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if err := c.Sort.Validate(); err != nil {
		return err
	}
	if c.Cache != nil && c.Resource == "" {
		return &policy.ConfigError{Field: "Resource", Message: "is required when Cache is set"}
	}
	return nil
}

// Engine answers list/get reads for one resource.
type Engine[T, Pub, Lite any] struct {
	cfg Config[T, Pub, Lite]
}

// New validates the configuration and builds an engine.
func New[T, Pub, Lite any](cfg Config[T, Pub, Lite]) (*Engine[T, Pub, Lite], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.IDKey == "" {
		cfg.IDKey = "id"
	}
	if cfg.LiteDefault <= 0 {
		cfg.LiteDefault = 10
	}
	if cfg.LiteMax <= 0 {
		cfg.LiteMax = 50
	}
	return &Engine[T, Pub, Lite]{cfg: cfg}, nil
}

// List returns one page of projected rows plus pagination totals. The count
// and the bounded fetch are issued concurrently.
func (e *Engine[T, Pub, Lite]) List(ctx context.Context, tenantID string, f Filter) (ListEnvelope[Pub], error) {
	var zero ListEnvelope[Pub]
	if err := e.before(ctx, OpList, tenantID, f); err != nil {
		return zero, err
	}

	params := e.cfg.Policy.Clamp(f.Params())
	if err := e.cfg.Policy.CheckWindow(params.Page, params.PageSize); err != nil {
		return zero, err
	}
	sortKey, dir := e.cfg.Sort.Resolve(params.Sort, params.Dir)
	where := policy.EnforceTenant(f.Where(), tenantID, e.cfg.TenantKey)

	ctx, cancel := e.deadline(ctx)
	defer cancel()

	fetch := func(ctx context.Context) (ListEnvelope[Pub], error) {
		return e.fetchPage(ctx, where, params, sortKey, dir)
	}
	if e.cfg.Cache != nil {
		key := querycache.KeyOf(e.cfg.Resource, string(OpList),
			tenantID, params.Page, params.PageSize, sortKey, string(dir), where.String())
		return querycache.GetOrFetch(ctx, e.cfg.Cache, key, fetch)
	}
	return fetch(ctx)
}

func (e *Engine[T, Pub, Lite]) fetchPage(ctx context.Context, where store.Where, params policy.ListParams, sortKey string, dir policy.Direction) (ListEnvelope[Pub], error) {
	var (
		total int
		rows  []T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := e.cfg.Adapter.Count(gctx, where)
		total = n
		return err
	})
	g.Go(func() error {
		found, err := e.cfg.Adapter.FindMany(gctx, store.Query{
			Where: where,
			Order: []store.Order{{Key: sortKey, Dir: string(dir)}},
			Skip:  (params.Page - 1) * params.PageSize,
			Take:  params.PageSize,
		})
		rows = found
		return err
	})
	if err := g.Wait(); err != nil {
		return ListEnvelope[Pub]{}, err
	}

	data := make([]Pub, len(rows))
	for i, r := range rows {
		data[i] = e.cfg.MapRow(r)
	}
	return ListEnvelope[Pub]{
		Data:       data,
		Total:      total,
		TotalPages: totalPages(total, params.PageSize),
	}, nil
}

// GetByID fetches at most one row scoped to the tenant. Absence is a valid
// result: (nil, nil), never an error, so callers cannot probe existence
// across tenants through error shapes.
func (e *Engine[T, Pub, Lite]) GetByID(ctx context.Context, tenantID, id string) (*Pub, error) {
	if err := e.before(ctx, OpGetByID, tenantID, id); err != nil {
		return nil, err
	}
	where := policy.EnforceTenant(store.Where{store.Eq(e.cfg.IDKey, id)}, tenantID, e.cfg.TenantKey)

	ctx, cancel := e.deadline(ctx)
	defer cancel()

	fetch := func(ctx context.Context) (*Pub, error) {
		row, err := e.cfg.Adapter.FindFirst(ctx, where)
		if err != nil || row == nil {
			return nil, err
		}
		pub := e.cfg.MapRow(*row)
		return &pub, nil
	}
	if e.cfg.Cache != nil {
		key := querycache.KeyOf(e.cfg.Resource, string(OpGetByID), tenantID, id)
		return querycache.GetOrFetch(ctx, e.cfg.Cache, key, fetch)
	}
	return fetch(ctx)
}

// ListLite returns a bounded, uncounted projection for selection widgets.
// The effective limit is min(requested-or-default, LiteMax, MaxPageSize).
func (e *Engine[T, Pub, Lite]) ListLite(ctx context.Context, tenantID string, f Filter) ([]Lite, error) {
	if err := e.before(ctx, OpListLite, tenantID, f); err != nil {
		return nil, err
	}
	if e.cfg.MapLite == nil {
		return nil, &policy.ConfigError{Field: "MapLite", Message: "is required for listLite"}
	}

	params := f.Params()
	limit := params.Limit
	if limit <= 0 {
		limit = e.cfg.LiteDefault
	}
	limit = min(limit, e.cfg.LiteMax, e.cfg.Policy.MaxPageSize)
	sortKey, dir := e.cfg.Sort.Resolve(params.Sort, params.Dir)
	where := policy.EnforceTenant(f.Where(), tenantID, e.cfg.TenantKey)

	ctx, cancel := e.deadline(ctx)
	defer cancel()

	rows, err := e.cfg.Adapter.FindMany(ctx, store.Query{
		Where: where,
		Order: []store.Order{{Key: sortKey, Dir: string(dir)}},
		Take:  limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Lite, len(rows))
	for i, r := range rows {
		out[i] = e.cfg.MapLite(r)
	}
	return out, nil
}

// before runs the shared pre-access pipeline: authorization, then tenant
// presence when the policy demands it.
func (e *Engine[T, Pub, Lite]) before(ctx context.Context, op Op, tenantID string, subject any) error {
	if e.cfg.Authorize != nil {
		if err := e.cfg.Authorize(ctx, op, tenantID, subject); err != nil {
			return err
		}
	}
	if e.cfg.Policy.RequireTenant && tenantID == "" {
		return policy.ErrTenantRequired
	}
	return nil
}

func (e *Engine[T, Pub, Lite]) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, e.cfg.Timeout)
	}
	return ctx, func() {}
}

func totalPages(total, pageSize int) int {
	pages := int(math.Ceil(float64(total) / float64(pageSize)))
	if pages < 1 {
		return 1
	}
	return pages
}
