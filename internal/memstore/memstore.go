// Package memstore provides an in-memory store.Adapter used by tests and the
// example program. It matches condition fields against struct json tags, the
// same names the filter specs emit.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zeflq/getrevio-core/store"
)

// Store is an in-memory adapter over copies of T.
type Store[T any] struct {
	mu   sync.RWMutex
	rows []T
}

// New builds an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{}
}

// Seed inserts rows without going through Create. Test convenience.
func (s *Store[T]) Seed(rows ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
}

// Len reports the current row count.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store[T]) Count(ctx context.Context, where store.Where) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.rows {
		if matches(s.rows[i], where) {
			n++
		}
	}
	return n, nil
}

func (s *Store[T]) FindMany(ctx context.Context, q store.Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matched := make([]T, 0)
	for i := range s.rows {
		if matches(s.rows[i], q.Where) {
			matched = append(matched, s.rows[i])
		}
	}
	s.mu.RUnlock()

	for i := len(q.Order) - 1; i >= 0; i-- {
		ord := q.Order[i]
		sort.SliceStable(matched, func(a, b int) bool {
			less := compare(fieldOf(matched[a], ord.Key), fieldOf(matched[b], ord.Key)) < 0
			if ord.Dir == "desc" {
				return !less
			}
			return less
		})
	}

	if q.Skip > 0 {
		if q.Skip >= len(matched) {
			return []T{}, nil
		}
		matched = matched[q.Skip:]
	}
	if q.Take > 0 && q.Take < len(matched) {
		matched = matched[:q.Take]
	}
	return matched, nil
}

func (s *Store[T]) FindFirst(ctx context.Context, where store.Where) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.rows {
		if matches(s.rows[i], where) {
			row := s.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (s *Store[T]) Create(ctx context.Context, rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *rec)
	return nil
}

func (s *Store[T]) Update(ctx context.Context, where store.Where, patch store.Patch) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched int64
	for i := range s.rows {
		if !matches(s.rows[i], where) {
			continue
		}
		matched++
		for field, value := range patch {
			if err := setField(&s.rows[i], field, value); err != nil {
				return matched, err
			}
		}
	}
	return matched, nil
}

func (s *Store[T]) Delete(ctx context.Context, where store.Where) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	var matched int64
	for i := range s.rows {
		if matches(s.rows[i], where) {
			matched++
			continue
		}
		kept = append(kept, s.rows[i])
	}
	s.rows = kept
	return matched, nil
}

// fieldOf resolves a condition field name to the struct field value, matching
// on the json tag first, then the case-insensitive field name.
func fieldOf(rec any, name string) reflect.Value {
	rv := reflect.ValueOf(rec)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name || (tag == "" && strings.EqualFold(f.Name, name)) || strings.EqualFold(f.Name, name) {
			return rv.Field(i)
		}
	}
	return reflect.Value{}
}

func matches(rec any, where store.Where) bool {
	for _, c := range where {
		if !matchCond(rec, c) {
			return false
		}
	}
	return true
}

func matchCond(rec any, c store.Cond) bool {
	fv := fieldOf(rec, c.Field)
	if !fv.IsValid() {
		return false
	}
	switch c.Op {
	case store.OpEq:
		return compare(fv, reflect.ValueOf(c.Value)) == 0
	case store.OpNe:
		return compare(fv, reflect.ValueOf(c.Value)) != 0
	case store.OpIn:
		vv := reflect.ValueOf(c.Value)
		if vv.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < vv.Len(); i++ {
			if compare(fv, vv.Index(i)) == 0 {
				return true
			}
		}
		return false
	case store.OpContains:
		needle, _ := c.Value.(string)
		return strings.Contains(strings.ToLower(asString(fv)), strings.ToLower(needle))
	case store.OpGte:
		return compare(fv, reflect.ValueOf(c.Value)) >= 0
	case store.OpLte:
		return compare(fv, reflect.ValueOf(c.Value)) <= 0
	case store.OpIsNull:
		return isNull(fv)
	}
	return false
}

func isNull(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return v.Len() == 0
	}
	return false
}

// compare orders two reflected values: times chronologically, numbers
// numerically, everything else by string form. Nil pointers sort first.
func compare(a, b reflect.Value) int {
	an, bn := deref(a), deref(b)
	switch {
	case !an.IsValid() && !bn.IsValid():
		return 0
	case !an.IsValid():
		return -1
	case !bn.IsValid():
		return 1
	}
	if at, ok := asTime(an); ok {
		if bt, ok := asTime(bn); ok {
			return at.Compare(bt)
		}
	}
	if af, ok := asFloat(an); ok {
		if bf, ok := asFloat(bn); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(asString(an), asString(bn))
}

func deref(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		return deref(v.Elem())
	}
	return v
}

func asTime(v reflect.Value) (time.Time, bool) {
	if v.Type() == reflect.TypeOf(time.Time{}) {
		return v.Interface().(time.Time), true
	}
	return time.Time{}, false
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

func asString(v reflect.Value) string {
	v = deref(v)
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// setField writes a patch value onto the named struct field, converting
// between the handful of shapes patches actually carry: assignable values,
// value-to-pointer, numeric strings, and nil to clear pointers and maps.
func setField[T any](rec *T, name string, value any) error {
	rv := reflect.ValueOf(rec).Elem()
	var fv reflect.Value
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name || strings.EqualFold(f.Name, name) {
			fv = rv.Field(i)
			break
		}
	}
	if !fv.IsValid() || !fv.CanSet() {
		return fmt.Errorf("memstore: no settable field %q", name)
	}

	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	vv := reflect.ValueOf(value)
	switch {
	case vv.Type().AssignableTo(fv.Type()):
		fv.Set(vv)
	case fv.Kind() == reflect.Ptr && vv.Type().AssignableTo(fv.Type().Elem()):
		p := reflect.New(fv.Type().Elem())
		p.Elem().Set(vv)
		fv.Set(p)
	case vv.Type().ConvertibleTo(fv.Type()):
		fv.Set(vv.Convert(fv.Type()))
	case fv.Kind() == reflect.Int && vv.Kind() == reflect.String:
		n, err := strconv.Atoi(vv.String())
		if err != nil {
			return fmt.Errorf("memstore: field %q: %w", name, err)
		}
		fv.SetInt(int64(n))
	default:
		return fmt.Errorf("memstore: cannot assign %T to field %q", value, name)
	}
	return nil
}
