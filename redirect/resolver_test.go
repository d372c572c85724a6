package redirect

import (
	"context"
	"testing"

	"github.com/zeflq/getrevio-core/internal/memstore"
	"github.com/zeflq/getrevio-core/model"
	"github.com/zeflq/getrevio-core/pkg/testsupport"
)

func newTestResolver(places []model.Place, campaigns []model.Campaign) *Resolver {
	ps := memstore.New[model.Place]()
	ps.Seed(places...)
	cs := memstore.New[model.Campaign]()
	cs.Seed(campaigns...)
	return NewResolver(ps, cs)
}

func TestResolvePlaceTarget(t *testing.T) {
	r := newTestResolver(
		[]model.Place{testsupport.NewPlace("pl_1", "m_1", "bella-pizza")},
		nil,
	)

	url, ok, err := r.Resolve(context.Background(), "https://go.example", model.PlaceTarget("pl_1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || url != "https://go.example/bella-pizza" {
		t.Errorf("Resolve = (%q, %v)", url, ok)
	}
}

func TestResolveTrimsTrailingSlash(t *testing.T) {
	r := newTestResolver(
		[]model.Place{testsupport.NewPlace("pl_1", "m_1", "bella-pizza")},
		nil,
	)

	url, ok, _ := r.Resolve(context.Background(), "https://go.example/", model.PlaceTarget("pl_1"))
	if !ok || url != "https://go.example/bella-pizza" {
		t.Errorf("Resolve = (%q, %v)", url, ok)
	}
}

func TestResolveCampaignTarget(t *testing.T) {
	r := newTestResolver(
		[]model.Place{testsupport.NewPlace("pl_1", "m_1", "bella-pizza")},
		[]model.Campaign{testsupport.NewCampaign("cmp 1", "m_1", "pl_1")},
	)

	url, ok, err := r.Resolve(context.Background(), "https://go.example", model.CampaignTarget("cmp 1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatal("campaign target did not resolve")
	}
	// The campaign id rides along as an escaped query parameter.
	if url != "https://go.example/bella-pizza?c=cmp+1" {
		t.Errorf("url = %q", url)
	}
}

func TestResolveUnresolvableChains(t *testing.T) {
	r := newTestResolver(
		[]model.Place{testsupport.NewPlace("pl_blank", "m_1", "")},
		[]model.Campaign{testsupport.NewCampaign("cmp_orphan", "m_1", "pl_gone")},
	)

	tests := []struct {
		name   string
		target model.Target
	}{
		{"missing place", model.PlaceTarget("pl_gone")},
		{"blank slug", model.PlaceTarget("pl_blank")},
		{"missing campaign", model.CampaignTarget("cmp_gone")},
		{"campaign pointing at a deleted place", model.CampaignTarget("cmp_orphan")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, ok, err := r.Resolve(context.Background(), "https://go.example", tt.target)
			if err != nil {
				t.Fatalf("unresolvable must not error, got %v", err)
			}
			if ok || url != "" {
				t.Errorf("Resolve = (%q, %v), want unresolvable", url, ok)
			}
		})
	}
}

func TestResolveUnknownKind(t *testing.T) {
	r := newTestResolver(nil, nil)
	_, _, err := r.Resolve(context.Background(), "https://go.example", model.Target{Kind: "banner"})
	if err == nil {
		t.Error("expected error for unknown target kind")
	}
}
