package di

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeflq/getrevio-core/action"
	"github.com/zeflq/getrevio-core/model"
	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/query"
	"github.com/zeflq/getrevio-core/redirect"
	"github.com/zeflq/getrevio-core/store"
)

// Engines bundles both sides of one resource. Store is the backing adapter,
// exposed so other resources can read the same rows; with in-memory adapters
// every NewStore call is a separate universe.
type Engines[T any] struct {
	Query  *query.Engine[T, T, model.Option]
	Action *action.Engine[T]
	Store  store.Adapter[T]
}

// engineSpec is the per-resource wiring the shared builder consumes.
type engineSpec[T any] struct {
	resource  string
	sort      policy.SortPolicy
	scoped    bool
	immutable []string
	stamp     func(*T, string)
	prepare   func(*T)
	mapLite   func(T) model.Option
}

// immutablePatch builds a patch validator that rejects writes to the named
// fields. Identity and ownership never move through a partial update.
func immutablePatch(fields []string) func(store.Patch) error {
	return func(patch store.Patch) error {
		for _, field := range fields {
			if _, ok := patch[field]; ok {
				return fmt.Errorf("%w: field %q is immutable", model.ErrValidation, field)
			}
		}
		return nil
	}
}

func newEngines[T any](c *Container, spec engineSpec[T]) (*Engines[T], error) {
	adapter := NewStore[T](c)

	tenantKey := ""
	if spec.scoped {
		tenantKey = "merchantId"
	}

	act, err := action.New(action.Config[T]{
		Adapter:       adapter,
		TenantKey:     tenantKey,
		RequireTenant: spec.scoped,
		StampTenant:   spec.stamp,
		LoadPrevious:  true,
		ValidatePatch: immutablePatch(spec.immutable),
		BeforeCreate: func(_ context.Context, _ action.Context, rec *T) error {
			spec.prepare(rec)
			return nil
		},
		Invalidate: func() { c.qcache.InvalidateResource(spec.resource) },
		Logger:     c.log,
	})
	if err != nil {
		return nil, err
	}

	qry, err := query.New(query.Config[T, T, model.Option]{
		Adapter:   adapter,
		Policy:    policy.QueryPolicy{RequireTenant: spec.scoped, MaxPageSize: 100, MaxWindow: 10000},
		Sort:      spec.sort,
		TenantKey: tenantKey,
		MapRow:    func(r T) T { return r },
		MapLite:   spec.mapLite,
		Cache:     c.qcache,
		Resource:  spec.resource,
	})
	if err != nil {
		return nil, err
	}
	return &Engines[T]{Query: qry, Action: act, Store: adapter}, nil
}

// NewMerchantEngines builds the merchant resource. Merchants are the tenant
// boundary itself, so their listing is unscoped.
func NewMerchantEngines(c *Container) (*Engines[model.Merchant], error) {
	return newEngines(c, engineSpec[model.Merchant]{
		resource: "merchant",
		sort: policy.SortPolicy{
			Allowed:    []string{"name", "plan", "createdAt"},
			DefaultKey: "createdAt",
			DefaultDir: policy.Desc,
		},
		immutable: []string{"id", "createdAt"},
		prepare: func(m *model.Merchant) {
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			m.CreatedAt = time.Now().UTC()
		},
		mapLite: func(m model.Merchant) model.Option {
			return model.Option{Value: m.ID, Label: m.Name}
		},
	})
}

// NewPlaceEngines builds the place resource.
func NewPlaceEngines(c *Container) (*Engines[model.Place], error) {
	return newEngines(c, engineSpec[model.Place]{
		resource: "place",
		sort: policy.SortPolicy{
			Allowed:    []string{"name", "slug", "createdAt"},
			DefaultKey: "name",
			DefaultDir: policy.Asc,
		},
		scoped:    true,
		immutable: []string{"id", "merchantId", "createdAt"},
		stamp:     func(p *model.Place, tenantID string) { p.MerchantID = tenantID },
		prepare: func(p *model.Place) {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			p.CreatedAt = time.Now().UTC()
		},
		mapLite: func(p model.Place) model.Option {
			return model.Option{Value: p.ID, Label: p.Name}
		},
	})
}

// NewCampaignEngines builds the campaign resource.
func NewCampaignEngines(c *Container) (*Engines[model.Campaign], error) {
	return newEngines(c, engineSpec[model.Campaign]{
		resource: "campaign",
		sort: policy.SortPolicy{
			Allowed:    []string{"name", "channel", "createdAt"},
			DefaultKey: "createdAt",
			DefaultDir: policy.Desc,
		},
		scoped:    true,
		immutable: []string{"id", "merchantId", "createdAt"},
		stamp:     func(cp *model.Campaign, tenantID string) { cp.MerchantID = tenantID },
		prepare: func(cp *model.Campaign) {
			if cp.ID == "" {
				cp.ID = uuid.NewString()
			}
			cp.CreatedAt = time.Now().UTC()
		},
		mapLite: func(cp model.Campaign) model.Option {
			return model.Option{Value: cp.ID, Label: cp.Name}
		},
	})
}

// NewThemeEngines builds the theme resource.
func NewThemeEngines(c *Container) (*Engines[model.Theme], error) {
	return newEngines(c, engineSpec[model.Theme]{
		resource: "theme",
		sort: policy.SortPolicy{
			Allowed:    []string{"name", "createdAt"},
			DefaultKey: "name",
			DefaultDir: policy.Asc,
		},
		scoped:    true,
		immutable: []string{"id", "merchantId", "createdAt"},
		stamp:     func(t *model.Theme, tenantID string) { t.MerchantID = tenantID },
		prepare: func(t *model.Theme) {
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			t.CreatedAt = time.Now().UTC()
		},
		mapLite: func(t model.Theme) model.Option {
			return model.Option{Value: t.ID, Label: t.Name}
		},
	})
}

// NewRedirectResource builds the redirect resource on the container's
// singletons and the supplied lookup adapters, so the resolver sees the same
// rows the place and campaign engines write.
func NewRedirectResource(c *Container, places store.Adapter[model.Place], campaigns store.Adapter[model.Campaign]) (*redirect.Resource, error) {
	return redirect.NewResource(redirect.ResourceConfig{
		Redirects:    NewStore[model.Redirect](c),
		Places:       places,
		Campaigns:    campaigns,
		KV:           c.kv,
		BaseURL:      c.cfg.BaseURL,
		Cache:        c.qcache,
		CodeLength:   c.cfg.CodeLength,
		CodeAttempts: c.cfg.CodeAttempts,
		Logger:       c.log,
	})
}
