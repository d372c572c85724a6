package redirect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zeflq/getrevio-core/action"
	"github.com/zeflq/getrevio-core/kv"
	"github.com/zeflq/getrevio-core/model"
	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/query"
	"github.com/zeflq/getrevio-core/querycache"
	"github.com/zeflq/getrevio-core/store"
)

// ResourceName is the cache namespace list/get results live under.
const ResourceName = "redirect"

// ResourceConfig wires the redirect resource: adapters for the record and its
// lookup chain, the cache store, and tuning knobs.
type ResourceConfig struct {
	Redirects store.Adapter[model.Redirect]
	Places    store.Adapter[model.Place]
	Campaigns store.Adapter[model.Campaign]

	KV      kv.Client
	BaseURL string

	// Cache enables read-through caching on the query side. Optional.
	Cache *querycache.Service

	CodeLength   int
	CodeAttempts int

	Logger *zap.Logger
	Now    func() time.Time
}

// Resource bundles both engine sides for redirects plus the code allocator
// and the synchronizer behind the hooks.
type Resource struct {
	Query  *query.Engine[model.Redirect, model.Redirect, model.Option]
	Action *action.Engine[model.Redirect]
	Codes  *CodeAllocator
	Sync   *Synchronizer
}

// NewResource assembles the redirect resource. Create allocates the code and
// stamps identity; every after-hook mirrors the record into the cache store.
func NewResource(cfg ResourceConfig) (*Resource, error) {
	if cfg.Redirects == nil {
		return nil, &policy.ConfigError{Field: "Redirects", Message: "is required"}
	}
	if cfg.Places == nil || cfg.Campaigns == nil {
		return nil, &policy.ConfigError{Field: "Places", Message: "and Campaigns are required for resolution"}
	}

	allocator := &CodeAllocator{
		Redirects: cfg.Redirects,
		Length:    cfg.CodeLength,
		Attempts:  cfg.CodeAttempts,
	}
	sync, err := NewSynchronizer(SyncConfig{
		KV:       cfg.KV,
		Resolver: NewResolver(cfg.Places, cfg.Campaigns),
		BaseURL:  cfg.BaseURL,
		Logger:   cfg.Logger,
		Now:      cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	invalidate := func() {}
	if cfg.Cache != nil {
		invalidate = func() { cfg.Cache.InvalidateResource(ResourceName) }
	}

	act, err := action.New(action.Config[model.Redirect]{
		Adapter:       cfg.Redirects,
		TenantKey:     "merchantId",
		RequireTenant: true,
		StampTenant:   func(rec *model.Redirect, tenantID string) { rec.MerchantID = tenantID },
		LoadPrevious:  true,
		BeforeCreate: func(ctx context.Context, _ action.Context, rec *model.Redirect) error {
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			code, err := allocator.Allocate(ctx, rec.Code)
			if err != nil {
				return err
			}
			rec.Code = code
			now := time.Now().UTC()
			rec.CreatedAt = now
			rec.UpdatedAt = now
			return nil
		},
		AfterCreate: func(ctx context.Context, ev action.Created[model.Redirect]) error {
			sync.OnCreated(ctx, ev.Record)
			return nil
		},
		BeforeUpdate: func(_ context.Context, _ action.Context, _ string, patch store.Patch) (store.Patch, error) {
			stamped := make(store.Patch, len(patch)+1)
			for k, v := range patch {
				stamped[k] = v
			}
			stamped["updatedAt"] = time.Now().UTC()
			return stamped, nil
		},
		AfterUpdate: func(ctx context.Context, ev action.Updated[model.Redirect]) error {
			sync.OnUpdated(ctx, ev.Previous, ev.Patch)
			return nil
		},
		AfterDelete: func(ctx context.Context, ev action.Deleted[model.Redirect]) error {
			sync.OnDeleted(ctx, ev.Previous)
			return nil
		},
		ValidatePatch: validateRedirectPatch,
		Invalidate:    invalidate,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	qry, err := query.New(query.Config[model.Redirect, model.Redirect, model.Option]{
		Adapter: cfg.Redirects,
		Policy: policy.QueryPolicy{
			RequireTenant: true,
			MaxPageSize:   100,
			MaxWindow:     10000,
		},
		Sort: policy.SortPolicy{
			Allowed:    []string{"code", "channel", "active", "createdAt", "updatedAt"},
			DefaultKey: "createdAt",
			DefaultDir: policy.Desc,
		},
		TenantKey: "merchantId",
		MapRow:    func(r model.Redirect) model.Redirect { return r },
		MapLite: func(r model.Redirect) model.Option {
			return model.Option{Value: r.ID, Label: r.Code}
		},
		Cache:    cfg.Cache,
		Resource: ResourceName,
	})
	if err != nil {
		return nil, err
	}

	return &Resource{Query: qry, Action: act, Codes: allocator, Sync: sync}, nil
}

// validateRedirectPatch rejects fields a partial update may never touch.
// Identity and ownership are fixed at create time; code changes are allowed
// but must stay inside the code length bound.
func validateRedirectPatch(patch store.Patch) error {
	for _, field := range []string{"id", "merchantId", "createdAt"} {
		if _, ok := patch[field]; ok {
			return fmt.Errorf("%w: field %q is immutable", model.ErrValidation, field)
		}
	}
	if v, ok := patch["code"]; ok {
		code, isString := v.(string)
		if !isString || code == "" || len(code) > 32 {
			return fmt.Errorf("%w: code must be a non-empty string of at most 32 characters", model.ErrValidation)
		}
	}
	if v, ok := patch["target"]; ok {
		target, isTarget := v.(model.Target)
		if !isTarget {
			return fmt.Errorf("%w: target must be a target union", model.ErrValidation)
		}
		if err := target.Validate(); err != nil {
			return fmt.Errorf("%w: %w", model.ErrValidation, err)
		}
	}
	return nil
}
