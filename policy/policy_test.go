package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/zeflq/getrevio-core/store"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
	}{
		{"asc", Asc},
		{"desc", Desc},
		{"", ""},
		{"ASC", ""},
		{"random", ""},
	}
	for _, tt := range tests {
		if got := ParseDirection(tt.input); got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestQueryPolicyValidate(t *testing.T) {
	if err := (QueryPolicy{MaxPageSize: 100, MaxWindow: 1000}).Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
	if err := (QueryPolicy{MaxPageSize: 0, MaxWindow: 100}).Validate(); err == nil {
		t.Error("expected error for zero MaxPageSize")
	}
	if err := (QueryPolicy{MaxPageSize: 100, MaxWindow: 50}).Validate(); err == nil {
		t.Error("expected error for MaxWindow < MaxPageSize")
	}
}

func TestClamp(t *testing.T) {
	p := QueryPolicy{MaxPageSize: 100, MaxWindow: 1000}

	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"zero values", 0, 0, 1, 1},
		{"negative page", -3, 20, 1, 20},
		{"oversized page size", 1, 500, 1, 100},
		{"already in bounds", 4, 25, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Clamp(ListParams{Page: tt.page, PageSize: tt.size})
			if got.Page != tt.wantPage || got.PageSize != tt.wantPageSize {
				t.Errorf("Clamp() = page %d size %d, want page %d size %d",
					got.Page, got.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestClampLeavesOtherFieldsAlone(t *testing.T) {
	p := QueryPolicy{MaxPageSize: 100, MaxWindow: 1000}
	got := p.Clamp(ListParams{Page: 0, PageSize: 0, Sort: "name", Dir: Desc, Limit: 7})
	if got.Sort != "name" || got.Dir != Desc || got.Limit != 7 {
		t.Errorf("Clamp touched non-pagination fields: %+v", got)
	}
}

func TestCheckWindow(t *testing.T) {
	p := QueryPolicy{MaxPageSize: 100, MaxWindow: 1000}

	// Page 10 of 100 ends exactly at the cap.
	if err := p.CheckWindow(10, 100); err != nil {
		t.Errorf("window at the cap should pass, got %v", err)
	}
	err := p.CheckWindow(11, 100)
	if !errors.Is(err, ErrWindowExceeded) {
		t.Errorf("window past the cap: got %v, want ErrWindowExceeded", err)
	}

	// Extreme pages must not wrap the window arithmetic past the guard.
	err = p.CheckWindow(math.MaxInt, 100)
	if !errors.Is(err, ErrWindowExceeded) {
		t.Errorf("max-int page: got %v, want ErrWindowExceeded", err)
	}
	err = p.CheckWindow(math.MaxInt/100+1, 100)
	if !errors.Is(err, ErrWindowExceeded) {
		t.Errorf("page at overflow boundary: got %v, want ErrWindowExceeded", err)
	}
}

func TestSortPolicyValidate(t *testing.T) {
	ok := SortPolicy{Allowed: []string{"name", "createdAt"}, DefaultKey: "name", DefaultDir: Asc}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
	bad := SortPolicy{Allowed: []string{"name"}, DefaultKey: "plan"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error when DefaultKey is not in Allowed")
	}
}

func TestSortPolicyResolve(t *testing.T) {
	p := SortPolicy{Allowed: []string{"name", "createdAt"}, DefaultKey: "createdAt", DefaultDir: Desc}

	tests := []struct {
		name    string
		sort    string
		dir     Direction
		wantKey string
		wantDir Direction
	}{
		{"allowed key and dir", "name", Asc, "name", Asc},
		{"disallowed key falls back", "secret", Asc, "createdAt", Asc},
		{"empty key falls back", "", "", "createdAt", Desc},
		{"invalid dir falls back", "name", Direction("sideways"), "name", Desc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, dir := p.Resolve(tt.sort, tt.dir)
			if key != tt.wantKey || dir != tt.wantDir {
				t.Errorf("Resolve(%q, %q) = (%q, %q), want (%q, %q)",
					tt.sort, tt.dir, key, dir, tt.wantKey, tt.wantDir)
			}
		})
	}
}

func TestEnforceTenant(t *testing.T) {
	base := store.Where{store.Eq("active", true)}

	scoped := EnforceTenant(base, "m_1", "merchantId")
	if len(scoped) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(scoped))
	}
	last := scoped[len(scoped)-1]
	if last.Field != "merchantId" || last.Op != store.OpEq || last.Value != "m_1" {
		t.Errorf("unexpected tenant condition: %+v", last)
	}
	// The input predicate must not be mutated.
	if len(base) != 1 {
		t.Errorf("input where was mutated, len=%d", len(base))
	}

	if got := EnforceTenant(base, "", "merchantId"); len(got) != 1 {
		t.Errorf("empty tenant id should be a no-op, got %d conditions", len(got))
	}
	if got := EnforceTenant(base, "m_1", ""); len(got) != 1 {
		t.Errorf("empty tenant key should be a no-op, got %d conditions", len(got))
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "MaxPageSize", Message: "must be greater than 0"}
	want := "config error in field MaxPageSize: must be greater than 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
