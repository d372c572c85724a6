// Package policy holds the per-resource rules that keep list queries safe:
// page bounds, deep-pagination windows, sort allow-lists, and tenant scoping.
//
// Policies are plain values configured once per resource and consulted by the
// query and action engines before any store access. They never touch a store
// themselves.
package policy

import (
	"errors"

	"github.com/zeflq/getrevio-core/store"
)

// Direction is a sort direction. The zero value means "unspecified" and is
// resolved to a SortPolicy default.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps raw input to a Direction. Anything that is not a valid
// direction comes back as the zero value, which SortPolicy.Resolve treats as
// unspecified.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case Asc:
		return Asc
	case Desc:
		return Desc
	}
	return ""
}

var (
	// ErrWindowExceeded is returned when a list request would scan past the
	// configured window cap. It protects the store from deep-pagination cost
	// and is surfaced to the caller unmodified.
	ErrWindowExceeded = errors.New("requested page window exceeds the scan cap")

	// ErrTenantRequired is returned when a policy mandates a tenant id and the
	// caller supplied none.
	ErrTenantRequired = errors.New("tenant id required")
)

// ListParams carries the pagination and ordering portion of a filter spec.
// Resource filter types embed it; everything else on a filter is
// resource-specific.
type ListParams struct {
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Sort     string    `json:"sort,omitempty"`
	Dir      Direction `json:"dir,omitempty"`
	// Limit applies to lite listings only. Zero means "use the default".
	Limit int `json:"limit,omitempty"`
}

// QueryPolicy bounds what a single list request may ask of the store.
type QueryPolicy struct {
	// RequireTenant rejects requests that carry no tenant id.
	RequireTenant bool
	// MaxPageSize caps the effective page size after clamping.
	MaxPageSize int
	// MaxWindow caps skip+take. Must be >= MaxPageSize.
	MaxWindow int
}

// Validate checks the policy invariants.
func (p QueryPolicy) Validate() error {
	if p.MaxPageSize <= 0 {
		return &ConfigError{Field: "MaxPageSize", Message: "must be greater than 0"}
	}
	if p.MaxWindow < p.MaxPageSize {
		return &ConfigError{Field: "MaxWindow", Message: "must be >= MaxPageSize"}
	}
	return nil
}

// Clamp normalizes page and pageSize, leaving every other field untouched.
// The result satisfies page >= 1 and 1 <= pageSize <= MaxPageSize.
func (p QueryPolicy) Clamp(params ListParams) ListParams {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 1
	}
	if params.PageSize > p.MaxPageSize {
		params.PageSize = p.MaxPageSize
	}
	return params
}

// CheckWindow rejects requests whose skip+take would exceed MaxWindow.
// Call it with already-clamped values, before issuing any store call.
// The comparison is phrased division-side so extreme pages cannot wrap the
// multiplication and slip past the guard.
func (p QueryPolicy) CheckWindow(page, pageSize int) error {
	// page*pageSize > MaxWindow, without computing page*pageSize.
	if page > p.MaxWindow/pageSize {
		return ErrWindowExceeded
	}
	return nil
}

// SortPolicy is the per-resource sort allow-list.
type SortPolicy struct {
	Allowed    []string
	DefaultKey string
	DefaultDir Direction
}

// Validate checks that the default key is itself allowed.
func (p SortPolicy) Validate() error {
	if p.DefaultKey == "" {
		return &ConfigError{Field: "DefaultKey", Message: "must not be empty"}
	}
	if !contains(p.Allowed, p.DefaultKey) {
		return &ConfigError{Field: "DefaultKey", Message: "must be in Allowed"}
	}
	return nil
}

// Resolve maps a requested sort key and direction to an effective pair.
// A key outside the allow-list is treated as unspecified and falls back to
// the default; same for an invalid direction. Resolve never fails: permissive
// fallback is deliberate so that stale bookmarked sorts keep working.
func (p SortPolicy) Resolve(sort string, dir Direction) (string, Direction) {
	key := p.DefaultKey
	if sort != "" && contains(p.Allowed, sort) {
		key = sort
	}
	d := p.DefaultDir
	if dir == Asc || dir == Desc {
		d = dir
	}
	return key, d
}

// EnforceTenant merges a tenant equality constraint into the filter predicate.
// An empty tenant id is a no-op: RequireTenant rejection happens in the
// engines before this step, so reaching here without a tenant means the
// resource is deliberately unscoped.
func EnforceTenant(w store.Where, tenantID, tenantKey string) store.Where {
	if tenantID == "" || tenantKey == "" {
		return w
	}
	return w.And(store.Eq(tenantKey, tenantID))
}

// ConfigError reports an invalid policy or engine configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

func contains(set []string, key string) bool {
	for _, s := range set {
		if s == key {
			return true
		}
	}
	return false
}
