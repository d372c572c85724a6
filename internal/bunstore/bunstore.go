// Package bunstore implements store.Adapter on top of a bun.DB. Condition
// fields arrive in the json casing the filter specs use and are mapped to
// snake_case columns here.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"github.com/uptrace/bun"

	"github.com/zeflq/getrevio-core/store"
)

// Store adapts a bun table to the store.Adapter contract.
type Store[T any] struct {
	db *bun.DB
}

// New wraps db. The table is taken from T's bun model tags.
func New[T any](db *bun.DB) *Store[T] {
	return &Store[T]{db: db}
}

func (s *Store[T]) Count(ctx context.Context, where store.Where) (int, error) {
	q := s.db.NewSelect().Model((*T)(nil))
	applySelectWhere(q, where)
	return q.Count(ctx)
}

func (s *Store[T]) FindMany(ctx context.Context, q store.Query) ([]T, error) {
	rows := make([]T, 0)
	sel := s.db.NewSelect().Model(&rows)
	applySelectWhere(sel, q.Where)
	for _, ord := range q.Order {
		if ord.Dir == "desc" {
			sel.OrderExpr("? DESC", bun.Ident(column(ord.Key)))
		} else {
			sel.OrderExpr("? ASC", bun.Ident(column(ord.Key)))
		}
	}
	if q.Skip > 0 {
		sel.Offset(q.Skip)
	}
	if q.Take > 0 {
		sel.Limit(q.Take)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store[T]) FindFirst(ctx context.Context, where store.Where) (*T, error) {
	rec := new(T)
	sel := s.db.NewSelect().Model(rec).Limit(1)
	applySelectWhere(sel, where)
	if err := sel.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (s *Store[T]) Create(ctx context.Context, rec *T) error {
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	return err
}

func (s *Store[T]) Update(ctx context.Context, where store.Where, patch store.Patch) (int64, error) {
	upd := s.db.NewUpdate().Model((*T)(nil))
	for field, value := range patch {
		if value == nil {
			upd.Set("? = NULL", bun.Ident(column(field)))
			continue
		}
		upd.Set("? = ?", bun.Ident(column(field)), value)
	}
	for _, c := range where {
		applyUpdateCond(upd, c)
	}
	res, err := upd.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store[T]) Delete(ctx context.Context, where store.Where) (int64, error) {
	del := s.db.NewDelete().Model((*T)(nil))
	for _, c := range where {
		applyDeleteCond(del, c)
	}
	res, err := del.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func applySelectWhere(q *bun.SelectQuery, where store.Where) {
	for _, c := range where {
		expr, args := condExpr(c)
		q.Where(expr, args...)
	}
}

func applyUpdateCond(q *bun.UpdateQuery, c store.Cond) {
	expr, args := condExpr(c)
	q.Where(expr, args...)
}

func applyDeleteCond(q *bun.DeleteQuery, c store.Cond) {
	expr, args := condExpr(c)
	q.Where(expr, args...)
}

func condExpr(c store.Cond) (string, []any) {
	col := bun.Ident(column(c.Field))
	switch c.Op {
	case store.OpEq:
		return "? = ?", []any{col, c.Value}
	case store.OpNe:
		return "? <> ?", []any{col, c.Value}
	case store.OpIn:
		return "? IN (?)", []any{col, bun.In(c.Value)}
	case store.OpContains:
		needle, _ := c.Value.(string)
		return "LOWER(?) LIKE ?", []any{col, "%" + strings.ToLower(needle) + "%"}
	case store.OpGte:
		return "? >= ?", []any{col, c.Value}
	case store.OpLte:
		return "? <= ?", []any{col, c.Value}
	case store.OpIsNull:
		return "? IS NULL", []any{col}
	}
	return "? = ?", []any{col, c.Value}
}

// column converts the json field casing to the snake_case column name.
func column(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
