package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/zeflq/getrevio-core/store"
)

type row struct {
	ID         string     `json:"id"`
	MerchantID string     `json:"merchantId"`
	Name       string     `json:"name"`
	Rank       int        `json:"rank"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

func seeded() *Store[row] {
	s := New[row]()
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Seed(
		row{ID: "1", MerchantID: "m_1", Name: "Bella Pizza", Rank: 3, Active: true},
		row{ID: "2", MerchantID: "m_1", Name: "Corner Cafe", Rank: 1, Active: false, ExpiresAt: &exp},
		row{ID: "3", MerchantID: "m_2", Name: "Pizza Express", Rank: 2, Active: true},
	)
	return s
}

func TestCount(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	tests := []struct {
		name  string
		where store.Where
		want  int
	}{
		{"all", nil, 3},
		{"eq", store.Where{store.Eq("merchantId", "m_1")}, 2},
		{"ne", store.Where{store.Ne("merchantId", "m_1")}, 1},
		{"contains is case-insensitive", store.Where{store.Contains("name", "pizza")}, 2},
		{"in", store.Where{store.In("id", []string{"1", "3"})}, 2},
		{"gte", store.Where{store.Gte("rank", 2)}, 2},
		{"lte", store.Where{store.Lte("rank", 1)}, 1},
		{"isnull", store.Where{store.IsNull("expiresAt")}, 2},
		{"and combined", store.Where{store.Eq("merchantId", "m_1"), store.Eq("active", true)}, 1},
		{"unknown field matches nothing", store.Where{store.Eq("nope", "x")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Count(ctx, tt.where)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if got != tt.want {
				t.Errorf("Count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFindManyOrderAndWindow(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	rows, err := s.FindMany(ctx, store.Query{
		Order: []store.Order{{Key: "rank", Dir: "asc"}},
	})
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	gotIDs := ids(rows)
	if gotIDs != "2,3,1" {
		t.Errorf("asc order = %s, want 2,3,1", gotIDs)
	}

	rows, err = s.FindMany(ctx, store.Query{
		Order: []store.Order{{Key: "rank", Dir: "desc"}},
		Skip:  1,
		Take:  1,
	})
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if got := ids(rows); got != "3" {
		t.Errorf("windowed desc = %s, want 3", got)
	}

	rows, err = s.FindMany(ctx, store.Query{Skip: 10})
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("skip past end should be empty, got %d rows", len(rows))
	}
}

func TestFindFirst(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	got, err := s.FindFirst(ctx, store.Where{store.Eq("id", "2")})
	if err != nil {
		t.Fatalf("FindFirst: %v", err)
	}
	if got == nil || got.Name != "Corner Cafe" {
		t.Errorf("FindFirst = %+v", got)
	}

	got, err = s.FindFirst(ctx, store.Where{store.Eq("id", "missing")})
	if err != nil {
		t.Fatalf("FindFirst: %v", err)
	}
	if got != nil {
		t.Errorf("absence should be (nil, nil), got %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	matched, err := s.Update(ctx, store.Where{store.Eq("id", "1")}, store.Patch{
		"name":      "Bella Pizza 2",
		"active":    false,
		"expiresAt": &exp,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if matched != 1 {
		t.Fatalf("matched = %d, want 1", matched)
	}

	got, _ := s.FindFirst(ctx, store.Where{store.Eq("id", "1")})
	if got.Name != "Bella Pizza 2" || got.Active || got.ExpiresAt == nil {
		t.Errorf("patch not applied: %+v", got)
	}

	// nil clears a pointer field.
	if _, err := s.Update(ctx, store.Where{store.Eq("id", "1")}, store.Patch{"expiresAt": nil}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = s.FindFirst(ctx, store.Where{store.Eq("id", "1")})
	if got.ExpiresAt != nil {
		t.Error("nil patch value should clear the pointer field")
	}

	// Guarded predicate matching nothing reports zero.
	matched, err = s.Update(ctx, store.Where{store.Eq("id", "1"), store.Eq("merchantId", "m_2")}, store.Patch{"name": "x"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if matched != 0 {
		t.Errorf("cross-tenant guard matched %d rows, want 0", matched)
	}
}

func TestDelete(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	matched, err := s.Delete(ctx, store.Where{store.Eq("merchantId", "m_1")})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if matched != 2 {
		t.Errorf("matched = %d, want 2", matched)
	}
	if s.Len() != 1 {
		t.Errorf("remaining = %d, want 1", s.Len())
	}

	matched, _ = s.Delete(ctx, store.Where{store.Eq("id", "missing")})
	if matched != 0 {
		t.Errorf("matched = %d, want 0", matched)
	}
}

func TestCreateStoresACopy(t *testing.T) {
	s := New[row]()
	ctx := context.Background()

	rec := row{ID: "1", Name: "before"}
	if err := s.Create(ctx, &rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec.Name = "after"

	got, _ := s.FindFirst(ctx, store.Where{store.Eq("id", "1")})
	if got.Name != "before" {
		t.Errorf("store shares memory with the caller's record: %+v", got)
	}
}

func ids(rows []row) string {
	out := ""
	for i, r := range rows {
		if i > 0 {
			out += ","
		}
		out += r.ID
	}
	return out
}
