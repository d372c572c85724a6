// Package store defines the narrow persistence contract every resource engine
// works against: a generic six-verb adapter plus a small structured condition
// algebra that backends translate into their own predicates.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Op is a comparison operator inside a Cond.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpIn       Op = "in"
	OpContains Op = "contains" // case-insensitive substring match
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpIsNull   Op = "isnull"
)

// Cond is a single field predicate. Conds in a Where are AND-combined.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Where is an AND-combined predicate list. The empty Where matches everything.
type Where []Cond

// Eq builds an equality condition.
func Eq(field string, value any) Cond { return Cond{Field: field, Op: OpEq, Value: value} }

// Ne builds an inequality condition.
func Ne(field string, value any) Cond { return Cond{Field: field, Op: OpNe, Value: value} }

// In builds a membership condition. Value must be a slice.
func In(field string, values any) Cond { return Cond{Field: field, Op: OpIn, Value: values} }

// Contains builds a case-insensitive substring condition on a string field.
func Contains(field, value string) Cond { return Cond{Field: field, Op: OpContains, Value: value} }

// Gte builds a greater-or-equal condition.
func Gte(field string, value any) Cond { return Cond{Field: field, Op: OpGte, Value: value} }

// Lte builds a less-or-equal condition.
func Lte(field string, value any) Cond { return Cond{Field: field, Op: OpLte, Value: value} }

// IsNull builds a null/absence condition.
func IsNull(field string) Cond { return Cond{Field: field, Op: OpIsNull} }

// And returns a new Where with the extra conditions appended. The receiver is
// not modified, so policy layers can safely derive scoped predicates from a
// shared base.
func (w Where) And(conds ...Cond) Where {
	out := make(Where, 0, len(w)+len(conds))
	out = append(out, w...)
	out = append(out, conds...)
	return out
}

// String renders a deterministic textual form of the predicate, used for
// cache key segments. Condition order is preserved.
func (w Where) String() string {
	if len(w) == 0 {
		return "all"
	}
	parts := make([]string, len(w))
	for i, c := range w {
		parts[i] = fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
	}
	return strings.Join(parts, ",")
}

// Order is a single order-by term.
type Order struct {
	Key string
	Dir string // "asc" or "desc"
}

// Query is a bounded fetch request.
type Query struct {
	Where Where
	Order []Order
	Skip  int
	Take  int
}

// Patch is a partial update: field name to new value. A nil value clears the
// field where the backend supports it.
type Patch map[string]any

// Adapter is the persistence delegate a resource engine drives. One
// implementation exists per backing store; each resource instantiates it with
// its own row type.
//
// Update and Delete report the matched-row count so callers can implement
// guarded mutations: the predicate embeds ownership and the count is the sole
// correctness signal. FindFirst returns (nil, nil) when no row matches;
// absence is a value, not an error.
type Adapter[T any] interface {
	Count(ctx context.Context, where Where) (int, error)
	FindMany(ctx context.Context, q Query) ([]T, error)
	FindFirst(ctx context.Context, where Where) (*T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, where Where, patch Patch) (int64, error)
	Delete(ctx context.Context, where Where) (int64, error)
}
