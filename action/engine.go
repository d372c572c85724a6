// Package action implements the write side of the resource engine: validated,
// tenant-stamped, hook-wrapped guarded mutations.
//
// A guarded mutation is a single conditional statement whose predicate embeds
// both identity and tenant ownership; the matched-row count the store reports
// is the sole correctness signal. Zero matches surfaces one undifferentiated
// error so callers cannot distinguish "missing" from "owned by someone else".
package action

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/store"
)

// ErrNotFound is returned when a guarded update or delete matched zero rows.
// Deliberately undifferentiated: record absence and foreign ownership look
// identical to the caller.
var ErrNotFound = errors.New("record not found")

// Created is the afterCreate hook payload.
type Created[T any] struct {
	Record *T
	Ctx    Context
}

// Updated is the afterUpdate hook payload. Previous is the pre-update row
// when the engine was configured to load it; Record is the post-update row,
// nil if it vanished between the mutation and the re-fetch.
type Updated[T any] struct {
	ID       string
	Previous *T
	Patch    store.Patch
	Record   *T
	Ctx      Context
}

// Deleted is the afterDelete hook payload.
type Deleted[T any] struct {
	ID       string
	Previous *T
	Ctx      Context
}

// Result acknowledges a delete.
type Result struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// Config assembles an Engine. Adapter is required; hooks are optional
// callback fields, not inheritance, so the engine stays resource-agnostic.
type Config[T any] struct {
	Adapter store.Adapter[T]

	// TenantKey is the ownership field guarded mutations constrain on.
	TenantKey string
	// RequireTenant rejects anonymous callers before any store access.
	RequireTenant bool
	// StampTenant writes the resolved tenant id onto a record before any
	// create hook runs.
	StampTenant func(rec *T, tenantID string)
	// IDKey is the identity field. Defaults to "id".
	IDKey string

	// LoadPrevious fetches the pre-mutation row before update/delete so
	// after-hooks can clean up derived state keyed on old values.
	LoadPrevious bool

	BeforeCreate func(ctx context.Context, actx Context, rec *T) error
	AfterCreate  func(ctx context.Context, ev Created[T]) error
	BeforeUpdate func(ctx context.Context, actx Context, id string, patch store.Patch) (store.Patch, error)
	AfterUpdate  func(ctx context.Context, ev Updated[T]) error
	AfterDelete  func(ctx context.Context, ev Deleted[T]) error

	// ValidatePatch checks a partial update before any hook runs. Create
	// payloads are validated through their own Validate method when the row
	// type implements validation.Validatable.
	ValidatePatch func(patch store.Patch) error

	// Invalidate signals dependent read paths after a successful mutation.
	// Fire-and-forget with respect to the hooks above it.
	Invalidate func()

	Logger *zap.Logger
}

// Validate reports the first missing required configuration field.
func (c Config[T]) Validate() error {
	if c.Adapter == nil {
		return &policy.ConfigError{Field: "Adapter", Message: "is required"}
	}
	if c.RequireTenant && c.TenantKey == "" {
		return &policy.ConfigError{Field: "TenantKey", Message: "is required when RequireTenant is set"}
	}
	return nil
}

// Engine performs guarded mutations for one resource.
type Engine[T any] struct {
	cfg Config[T]
	log *zap.Logger
}

// New validates the configuration and builds an engine.
func New[T any](cfg Config[T]) (*Engine[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.IDKey == "" {
		cfg.IDKey = "id"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine[T]{cfg: cfg, log: log}, nil
}

// Create validates, tenant-stamps, and persists a new record, then runs the
// after-create hook and signals invalidation.
func (e *Engine[T]) Create(ctx context.Context, actx Context, rec *T) (*T, error) {
	tenantID, err := e.resolveTenant(actx)
	if err != nil {
		return nil, err
	}
	if err := validate(rec); err != nil {
		return nil, err
	}
	if tenantID != "" && e.cfg.StampTenant != nil {
		e.cfg.StampTenant(rec, tenantID)
	}
	if e.cfg.BeforeCreate != nil {
		if err := e.cfg.BeforeCreate(ctx, actx, rec); err != nil {
			return nil, err
		}
	}
	if err := e.cfg.Adapter.Create(ctx, rec); err != nil {
		return nil, err
	}
	if e.cfg.AfterCreate != nil {
		// The mutation is committed: the hook runs to completion even if the
		// caller has already gone away.
		if err := e.cfg.AfterCreate(context.WithoutCancel(ctx), Created[T]{Record: rec, Ctx: actx}); err != nil {
			return nil, err
		}
	}
	e.invalidate()
	return rec, nil
}

// Update applies a partial patch through a guarded mutation. If configured,
// the pre-update row is loaded first so hooks can see old values.
func (e *Engine[T]) Update(ctx context.Context, actx Context, id string, patch store.Patch) (*T, error) {
	tenantID, err := e.resolveTenant(actx)
	if err != nil {
		return nil, err
	}
	if e.cfg.ValidatePatch != nil {
		if err := e.cfg.ValidatePatch(patch); err != nil {
			return nil, err
		}
	}
	where := e.guard(id, tenantID)

	var previous *T
	if e.cfg.LoadPrevious {
		previous, err = e.cfg.Adapter.FindFirst(ctx, where)
		if err != nil {
			return nil, err
		}
	}
	if e.cfg.BeforeUpdate != nil {
		patch, err = e.cfg.BeforeUpdate(ctx, actx, id, patch)
		if err != nil {
			return nil, err
		}
	}

	matched, err := e.cfg.Adapter.Update(ctx, where, patch)
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, ErrNotFound
	}

	record, err := e.cfg.Adapter.FindFirst(ctx, where)
	if err != nil {
		return nil, err
	}
	if e.cfg.AfterUpdate != nil {
		ev := Updated[T]{ID: id, Previous: previous, Patch: patch, Record: record, Ctx: actx}
		if err := e.cfg.AfterUpdate(context.WithoutCancel(ctx), ev); err != nil {
			return nil, err
		}
	}
	e.invalidate()
	return record, nil
}

// Delete removes a record through a guarded mutation.
func (e *Engine[T]) Delete(ctx context.Context, actx Context, id string) (Result, error) {
	tenantID, err := e.resolveTenant(actx)
	if err != nil {
		return Result{}, err
	}
	where := e.guard(id, tenantID)

	var previous *T
	if e.cfg.LoadPrevious {
		previous, err = e.cfg.Adapter.FindFirst(ctx, where)
		if err != nil {
			return Result{}, err
		}
	}

	matched, err := e.cfg.Adapter.Delete(ctx, where)
	if err != nil {
		return Result{}, err
	}
	if matched == 0 {
		return Result{}, ErrNotFound
	}

	if e.cfg.AfterDelete != nil {
		ev := Deleted[T]{ID: id, Previous: previous, Ctx: actx}
		if err := e.cfg.AfterDelete(context.WithoutCancel(ctx), ev); err != nil {
			return Result{}, err
		}
	}
	e.invalidate()
	return Result{OK: true, ID: id}, nil
}

func (e *Engine[T]) resolveTenant(actx Context) (string, error) {
	tenantID := actx.TenantID()
	if e.cfg.RequireTenant && tenantID == "" {
		return "", policy.ErrTenantRequired
	}
	return tenantID, nil
}

// guard builds the id+ownership predicate a guarded mutation runs under.
func (e *Engine[T]) guard(id, tenantID string) store.Where {
	return policy.EnforceTenant(store.Where{store.Eq(e.cfg.IDKey, id)}, tenantID, e.cfg.TenantKey)
}

func (e *Engine[T]) invalidate() {
	if e.cfg.Invalidate != nil {
		e.cfg.Invalidate()
	}
}

func validate(rec any) error {
	if v, ok := rec.(validation.Validatable); ok {
		return v.Validate()
	}
	return nil
}
